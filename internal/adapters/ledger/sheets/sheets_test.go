package sheets_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"github.com/okian/fairway/internal/adapters/ledger/sheets"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeSheets answers values.get for a fixed set of cells.
func fakeSheets(t *testing.T, cells map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("valueRenderOption"); got != "FORMATTED_VALUE" {
			http.Error(w, "unexpected render option "+got, http.StatusBadRequest)
			return
		}
		idx := strings.Index(r.URL.Path, "/values/")
		if idx < 0 {
			http.NotFound(w, r)
			return
		}
		ref := r.URL.Path[idx+len("/values/"):]
		w.Header().Set("Content-Type", "application/json")
		v, ok := cells[ref]
		if !ok {
			fmt.Fprintf(w, `{"range":%q,"majorDimension":"ROWS"}`, ref)
			return
		}
		fmt.Fprintf(w, `{"range":%q,"majorDimension":"ROWS","values":[[%q]]}`, ref, v)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *sheets.Client {
	t.Helper()
	c, err := sheets.New(context.Background(), nil, "sheet-123",
		sheets.WithClientOptions(
			option.WithEndpoint(srv.URL+"/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestReadCell(t *testing.T) {
	Convey("Given a spreadsheet with currency cells", t, func() {
		srv := fakeSheets(t, map[string]string{"B2": "$1,250.00", "Totals!B3": "($300.50)"})
		c := newClient(t, srv)
		ctx := context.Background()

		Convey("Then formatted values come back verbatim", func() {
			v, err := c.ReadCell(ctx, "B2")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "$1,250.00")

			v, err = c.ReadCell(ctx, "Totals!B3")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "($300.50)")
		})

		Convey("And an empty cell is an error", func() {
			_, err := c.ReadCell(ctx, "Z99")
			So(errors.Is(err, sheets.ErrEmptyCell), ShouldBeTrue)
		})
	})

	Convey("Given a ledger that is down", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newClient(t, srv).ReadCell(context.Background(), "B2")
		So(err, ShouldNotBeNil)
		So(errors.Is(err, sheets.ErrEmptyCell), ShouldBeFalse)
	})
}
