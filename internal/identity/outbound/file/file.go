package file

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/identity/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jsonfile"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type userRecord struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	TotpSecret   *string   `json:"totpSecret"`
	TotpEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toRecord(u entity.User) userRecord {
	rec := userRecord{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		TotpEnabled:  u.TotpEnabled,
		CreatedAt:    u.CreatedAt,
	}
	if u.TotpSecret != "" {
		rec.TotpSecret = lo.ToPtr(u.TotpSecret)
	}
	return rec
}

func (r userRecord) toEntity() entity.User {
	return entity.User{
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		TotpSecret:   lo.FromPtr(r.TotpSecret),
		TotpEnabled:  r.TotpEnabled,
		CreatedAt:    r.CreatedAt,
	}
}

// File is the JSON file backed credential store. The whole document is
// rewritten on every mutation.
type File struct {
	mu    sync.Mutex
	doc   *jsonfile.File[[]userRecord]
	users []entity.User
	ins   instrument.Instrumentation
}

// NewFile loads the store at path. A missing or corrupt document yields an
// empty store; any other read error is returned.
func NewFile(ctx context.Context, fsys afero.Fs, path string, ins instrument.Instrumentation) (*File, error) {
	doc := jsonfile.New[[]userRecord](fsys, path)

	records, err := doc.Load()
	var cerr *jsonfile.CorruptError
	switch {
	case err == nil:
	case jsonfile.IsNotExist(err):
		slog.InfoContext(ctx, "user store not found, starting empty", "path", doc.Path())
	case errors.As(err, &cerr):
		slog.WarnContext(ctx, "user store is corrupt, starting empty", "path", doc.Path(), "backup", cerr.Backup, "error", cerr.Err)
	default:
		return nil, err
	}

	users := make([]entity.User, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Username) == "" {
			slog.WarnContext(ctx, "skipping user record without username", "path", doc.Path())
			continue
		}
		users = append(users, rec.toEntity())
	}

	return &File{doc: doc, users: users, ins: ins}, nil
}

func (s *File) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.file").Start(ctx, name)
}

func (s *File) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *File) indexOf(username string) int {
	key := entity.UsernameKey(username)
	_, idx, _ := lo.FindIndexOf(s.users, func(u entity.User) bool {
		return entity.UsernameKey(u.Username) == key
	})
	return idx
}

// persist writes users and only then makes them the in-memory state.
func (s *File) persist(users []entity.User) error {
	if err := s.doc.Save(lo.Map(users, func(u entity.User, _ int) userRecord {
		return toRecord(u)
	})); err != nil {
		return err
	}
	s.users = users
	return nil
}

// FindByUsername returns a copy of the user whose name matches ignoring case.
func (s *File) FindByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	_, span := s.startSpan(ctx, "FindByUsername")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(username)
	if idx < 0 {
		return nil, goerror.ErrNotFound
	}

	user := s.users[idx]
	return &user, nil
}

// Create appends user unless the name is taken, in which case it returns false.
func (s *File) Create(ctx context.Context, user entity.User) (_ bool, err error) {
	_, span := s.startSpan(ctx, "Create")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(user.Username) >= 0 {
		return false, nil
	}

	next := make([]entity.User, 0, len(s.users)+1)
	next = append(next, s.users...)
	next = append(next, user)

	if err := s.persist(next); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateTotp sets the TOTP fields of username. It returns false when the
// user does not exist.
func (s *File) UpdateTotp(ctx context.Context, username, secret string, enabled bool) (_ bool, err error) {
	_, span := s.startSpan(ctx, "UpdateTotp")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(username)
	if idx < 0 {
		return false, nil
	}

	next := make([]entity.User, len(s.users))
	copy(next, s.users)
	next[idx].TotpSecret = secret
	next[idx].TotpEnabled = enabled

	if err := s.persist(next); err != nil {
		return false, err
	}
	return true, nil
}
