package config

// Defaults are the values used when neither the config file nor the
// environment sets a key. They describe a local, file-backed deployment.
func Defaults() map[string]any {
	return map[string]any{
		"app.name":                                    "authbite",
		"app.server.http.address":                     ":8080",
		"app.server.http.read_timeout_seconds":        10,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       10,
		"app.server.http.idle_timeout_seconds":        60,
		"app.server.cors":                             "*",
		"app.maintenance.enabled":                     false,
		"app.maintenance.retry_after_seconds":         60,

		"instrument.enabled":                 false,
		"instrument.log_level":               "info",
		"instrument.service_name":            "authbite",
		"instrument.service_version":         "dev",
		"instrument.env":                     "local",
		"instrument.trace_sample_ratio":      1.0,
		"instrument.metric_interval_seconds": 15,
		"instrument.log_mask_fields":         "password,secret,code,authorization,access_token,uri",

		"hash.driver":          "bcrypt",
		"hash.bcrypt.cost":     12,
		"hash.bcrypt.pepper":   "",
		"hash.argon2id.pepper": "",
		"hash.hmac.secret":     "",

		"jwt.issuer":      "authbite",
		"jwt.audiences":   "authbite",
		"jwt.ttl_minutes": 15,

		"mfa.totp.issuer": "authbite",
		"mfa.totp.period": 30,
		"mfa.totp.skew":   1,

		"modules.identity.enabled":                     true,
		"modules.identity.seed_demo_account":           false,
		"modules.identity.store.driver":                "file",
		"modules.identity.store.file.path":             "data/users.json",
		"modules.identity.totp.enrollment_ttl_minutes": 10,
		"modules.identity.totp.replay_protection":      true,
		"modules.identity.totp.replay_driver":          "memory",
		"modules.authenticator.enabled":                true,
		"modules.authenticator.file.path":              "data/secrets.json",

		"database.pool.max_conns":                   10,
		"database.pool.min_conns":                   1,
		"database.pool.max_conn_lifetime_seconds":   3600,
		"database.pool.max_conn_idle_seconds":       600,
		"database.pool.health_check_period_seconds": 30,
		"database.migrate":                          true,
	}
}
