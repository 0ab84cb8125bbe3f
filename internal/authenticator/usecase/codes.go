package usecase

import (
	"context"
	"log/slog"
)

type CodeItem struct {
	ID   string
	Name string
	// Code is empty when the stored secret cannot produce one.
	Code string
}

type CodesOutput struct {
	Items            []CodeItem
	Period           uint
	SecondsRemaining int
}

// Codes computes the current code of every entry at a single instant, so all
// items share SecondsRemaining.
func (s *Usecase) Codes(ctx context.Context) (*CodesOutput, error) {
	ctx, span := s.startSpan(ctx, "Codes")
	defer span.End()

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &CodesOutput{
		Items:            make([]CodeItem, 0, len(entries)),
		Period:           s.totp.Period(),
		SecondsRemaining: s.totp.SecondsRemaining(now),
	}

	for _, e := range entries {
		code, err := s.ComputeCurrentCode(e, now)
		if err != nil {
			slog.WarnContext(ctx, "entry secret cannot produce a code", "id", e.ID, "name", e.Name)
		}
		out.Items = append(out.Items, CodeItem{ID: e.ID, Name: e.Name, Code: code})
	}

	return out, nil
}
