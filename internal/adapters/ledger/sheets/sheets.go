// Package sheets reads ledger cells from a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// ErrEmptyCell is returned when the requested cell has no value.
var ErrEmptyCell = errors.New("ledger cell is empty")

// Client reads formatted cell values.
type Client struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	timeout       time.Duration
	logger        logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*settings)

type settings struct {
	timeout time.Duration
	client  []option.ClientOption
	logger  logger.Logger
}

// WithTimeout bounds each cell read.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClientOptions passes options to the underlying API client, e.g. a test endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) {
		s.client = append(s.client, opts...)
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a read-only ledger client. credentialsJSON is a service
// account key; it may be nil when WithClientOptions supplies auth.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID string, opts ...Option) (*Client, error) {
	st := settings{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&st)
	}
	if st.logger == nil {
		st.logger = logger.Get().Named("ledger")
	}

	clientOpts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsReadonlyScope)}
	if len(credentialsJSON) > 0 {
		clientOpts = append(clientOpts, option.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, st.client...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Client{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		timeout:       st.timeout,
		logger:        st.logger,
	}, nil
}

// ReadCell returns the displayed value of one cell in A1 notation, e.g.
// "Totals!B7". Values are read as formatted so currency cells keep their
// symbols; callers parse them.
func (c *Client) ReadCell(ctx context.Context, ref string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.values.Get(c.spreadsheetID, ref).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		metrics.RecordLedgerRead(metrics.OutcomeError)
		c.logger.Warn(ctx, "ledger read failed", logger.String("cell", ref), logger.Error(err))
		return "", fmt.Errorf("read %s: %w", ref, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		metrics.RecordLedgerRead(metrics.OutcomeError)
		return "", fmt.Errorf("%w: %s", ErrEmptyCell, ref)
	}
	metrics.RecordLedgerRead(metrics.OutcomeOK)
	return fmt.Sprint(resp.Values[0][0]), nil
}
