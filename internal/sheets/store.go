package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// Config configures the spreadsheet-backed creator store
type Config struct {
	CredentialsJSON string
	SpreadsheetID   string
	Worksheet       string
	Timeout         time.Duration
}

// Store implements repository.Creator on top of one worksheet.
// Rows are read fresh on every call; nothing is cached between requests.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
	timeout       time.Duration
}

// NewStore creates a store. Service-account credentials are used when
// CredentialsJSON is set; extra options are appended after them.
func NewStore(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New(ErrMsgSpreadsheetIDReq)
	}
	if cfg.Worksheet == "" {
		cfg.Worksheet = DefaultWorksheet
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCallTimeout
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts,
			option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
			option.WithScopes(gsheets.SpreadsheetsScope),
		)
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateClient, err)
	}

	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
		timeout:       cfg.Timeout,
	}, nil
}

// sheetRange quotes the worksheet title for A1 notation
func (s *Store) sheetRange() string {
	return "'" + strings.ReplaceAll(s.worksheet, "'", "''") + "'"
}

func (s *Store) rowRange(rowNumber int) string {
	return fmt.Sprintf("%s!A%d", s.sheetRange(), rowNumber)
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, msg, err)
}

// snapshot is one read of the worksheet. rows[0] is the header row.
type snapshot struct {
	layout layout
	rows   [][]interface{}
	empty  bool
}

// find returns the 1-based sheet row number of the first row matching fn, or 0
func (sn snapshot) find(fn func(row []interface{}) bool) int {
	for i := 1; i < len(sn.rows); i++ {
		if fn(sn.rows[i]) {
			return i + 1
		}
	}
	return 0
}

func (sn snapshot) row(rowNumber int) []interface{} {
	return sn.rows[rowNumber-1]
}

func (s *Store) read(ctx context.Context) (snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetRange()).Context(ctx).Do()
	if err != nil {
		return snapshot{}, unavailable(ErrMsgReadFailed, err)
	}
	if len(resp.Values) == 0 {
		return snapshot{layout: defaultLayout(), empty: true}, nil
	}

	l, err := parseLayout(resp.Values[0])
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{layout: l, rows: resp.Values}, nil
}

// Get returns the record whose creator_id matches exactly
func (s *Store) Get(ctx context.Context, creatorID string) (*domain.Creator, error) {
	sn, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	n := sn.find(func(row []interface{}) bool { return sn.layout.creatorID(row) == creatorID })
	if n == 0 {
		return nil, domain.ErrCreatorNotFound
	}
	c := sn.layout.decode(sn.row(n))
	return &c, nil
}

// FindByProviderAccountID scans the provider account column
func (s *Store) FindByProviderAccountID(ctx context.Context, providerAccountID string) (*domain.Creator, error) {
	if providerAccountID == "" {
		return nil, domain.ErrCreatorNotFound
	}
	sn, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	n := sn.find(func(row []interface{}) bool {
		return sn.layout.get(row, ColProviderAccountID) == providerAccountID && sn.layout.creatorID(row) != ""
	})
	if n == 0 {
		return nil, domain.ErrCreatorNotFound
	}
	c := sn.layout.decode(sn.row(n))
	return &c, nil
}

// List returns every row with a creator_id, in sheet order
func (s *Store) List(ctx context.Context) ([]domain.Creator, error) {
	sn, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	creators := make([]domain.Creator, 0, len(sn.rows))
	for i := 1; i < len(sn.rows); i++ {
		if sn.layout.creatorID(sn.rows[i]) == "" {
			continue
		}
		creators = append(creators, sn.layout.decode(sn.rows[i]))
	}
	return creators, nil
}

// Upsert rewrites the matching row in place or appends a new one.
// The write is merged with the row as it is now, see mergeStored.
func (s *Store) Upsert(ctx context.Context, c *domain.Creator) error {
	if c == nil || strings.TrimSpace(c.CreatorID) == "" {
		return fmt.Errorf("%w: creator_id is required", domain.ErrInvalidInput)
	}

	sn, err := s.read(ctx)
	if err != nil {
		return err
	}

	if c.ProviderAccountID != "" {
		owner := sn.find(func(row []interface{}) bool {
			return sn.layout.get(row, ColProviderAccountID) == c.ProviderAccountID &&
				sn.layout.creatorID(row) != c.CreatorID
		})
		if owner != 0 {
			return fmt.Errorf("%w: %s is assigned to %s", domain.ErrAccountIDConflict, c.ProviderAccountID, sn.layout.creatorID(sn.row(owner)))
		}
	}

	n := sn.find(func(row []interface{}) bool { return sn.layout.creatorID(row) == c.CreatorID })
	if n == 0 {
		return s.append(ctx, sn, c)
	}

	existing := sn.layout.decode(sn.row(n))
	if existing.ProviderAccountID != "" && existing.ProviderAccountID != c.ProviderAccountID {
		return fmt.Errorf("%w: %s already has %s", domain.ErrAccountIDConflict, c.CreatorID, existing.ProviderAccountID)
	}

	record := mergeStored(*c, existing)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vr := &gsheets.ValueRange{Values: [][]interface{}{sn.layout.encode(&record, sn.row(n))}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(n), vr).
		ValueInputOption(valueInputRaw).Context(ctx).Do(); err != nil {
		return unavailable(ErrMsgWriteFailed, err)
	}
	return nil
}

// mergeStored guards the row against a write built from a stale read.
// created_at is kept, updated_at never moves backwards, onboarding_complete never reverts,
// a filled email or display name is kept and chat rooms are unioned.
func mergeStored(record, existing domain.Creator) domain.Creator {
	if !existing.CreatedAt.IsZero() {
		record.CreatedAt = existing.CreatedAt
	}
	if record.UpdatedAt.Before(existing.UpdatedAt) {
		record.UpdatedAt = existing.UpdatedAt
	}
	record.OnboardingComplete = record.OnboardingComplete || existing.OnboardingComplete
	if existing.Email != "" {
		record.Email = existing.Email
	}
	if existing.DisplayName != "" {
		record.DisplayName = existing.DisplayName
	}

	rooms := domain.Creator{ChatRoomIDs: append([]string(nil), existing.ChatRoomIDs...)}
	rooms.AddRooms(record.ChatRoomIDs...)
	record.ChatRoomIDs = rooms.ChatRoomIDs
	return record
}

func (s *Store) append(ctx context.Context, sn snapshot, c *domain.Creator) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var values [][]interface{}
	if sn.empty {
		header := make([]interface{}, len(Headers))
		for i, h := range Headers {
			header[i] = h
		}
		values = append(values, header)
		logger.FromContext(ctx).Info(LogMsgWroteHeaderOnUse, "worksheet", s.worksheet)
	}
	values = append(values, sn.layout.encode(c, nil))

	if _, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetRange(), &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).InsertDataOption(insertDataRows).Context(ctx).Do(); err != nil {
		return unavailable(ErrMsgAppendFailed, err)
	}
	return nil
}

// Ping checks that the spreadsheet is reachable with the configured credentials
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return unavailable(ErrMsgPingFailed, err)
	}
	return nil
}
