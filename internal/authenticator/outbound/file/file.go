package file

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/jsonfile"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// entryRecord decodes both the current {id,name,secret,owner} layout and the
// older {Name,Secret} one, since JSON keys match ignoring case.
type entryRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Secret string `json:"secret"`
	Owner  string `json:"owner,omitempty"`
}

// File is the JSON file backed secret entry store.
type File struct {
	mu      sync.Mutex
	doc     *jsonfile.File[[]entryRecord]
	entries []entity.Entry
	ins     instrument.Instrumentation
}

// NewFile loads the entries at path. Entries without an ID get one and the
// document is rewritten so the IDs stay stable across runs.
func NewFile(ctx context.Context, fsys afero.Fs, path string, uuid uid.StringID, ins instrument.Instrumentation) (*File, error) {
	doc := jsonfile.New[[]entryRecord](fsys, path)

	records, err := doc.Load()
	var cerr *jsonfile.CorruptError
	switch {
	case err == nil:
	case jsonfile.IsNotExist(err):
		slog.InfoContext(ctx, "secret store not found, starting empty", "path", doc.Path())
	case errors.As(err, &cerr):
		slog.WarnContext(ctx, "secret store is corrupt, starting empty", "path", doc.Path(), "backup", cerr.Backup, "error", cerr.Err)
	default:
		return nil, err
	}

	var assigned int
	entries := lo.Map(records, func(rec entryRecord, _ int) entity.Entry {
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = uuid.Generate()
			assigned++
		}
		return entity.Entry(rec)
	})

	s := &File{doc: doc, entries: entries, ins: ins}

	if assigned > 0 {
		if err := s.persist(entries); err != nil {
			slog.WarnContext(ctx, "failed to persist assigned entry ids", "path", doc.Path(), "count", assigned, "error", err)
		} else {
			slog.InfoContext(ctx, "assigned ids to legacy entries", "path", doc.Path(), "count", assigned)
		}
	}

	return s, nil
}

func (s *File) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.outbound.file").Start(ctx, name)
}

func (s *File) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *File) persist(entries []entity.Entry) error {
	if err := s.doc.Save(lo.Map(entries, func(e entity.Entry, _ int) entryRecord {
		return entryRecord(e)
	})); err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// List returns a copy of the entries of owner in insertion order.
func (s *File) List(ctx context.Context, owner string) (_ []entity.Entry, err error) {
	_, span := s.startSpan(ctx, "List")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Filter(s.entries, func(e entity.Entry, _ int) bool { return e.Owner == owner }), nil
}

// Add appends entry and persists the store.
func (s *File) Add(ctx context.Context, entry entity.Entry) (err error) {
	_, span := s.startSpan(ctx, "Add")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]entity.Entry, 0, len(s.entries)+1)
	next = append(next, s.entries...)
	next = append(next, entry)

	return s.persist(next)
}

// Remove deletes the entry of owner with id. It returns false when owner has
// no such entry.
func (s *File) Remove(ctx context.Context, owner, id string) (_ bool, err error) {
	_, span := s.startSpan(ctx, "Remove")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.entries, func(e entity.Entry) bool { return e.ID == id && e.Owner == owner })
	if idx < 0 {
		return false, nil
	}

	if err := s.persist(slices.Delete(slices.Clone(s.entries), idx, idx+1)); err != nil {
		return false, err
	}
	return true, nil
}
