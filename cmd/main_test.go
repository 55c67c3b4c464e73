package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func run(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	Convey("Given the command tree", t, func() {
		root := newRootCmd()

		Convey("Then serve, allocate and picks are available", func() {
			for _, name := range []string{"serve", "allocate", "picks"} {
				cmd, _, err := root.Find([]string{name})
				So(err, ShouldBeNil)
				So(cmd.Name(), ShouldEqual, name)
			}
			So(root.RunE, ShouldNotBeNil)
		})
	})
}

func TestAllocateCommand(t *testing.T) {
	Convey("Given an allocation on the command line", t, func() {
		out, err := run("allocate", "1u", "100", "Scheffler", "80/1,", "McIlroy", "50/1,", "Aberg", "120/1")

		Convey("Then the plan is printed", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "- **Scheffler** (80/1): 0.31u, $30.61, pays $2,448.98")
			So(out, ShouldContainSubstring, "- **Aberg** (120/1): 0.20u, $20.41")
		})
	})

	Convey("Given a malformed allocation", t, func() {
		_, err := run("allocate", "lots")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "Usage:")
	})
}

func TestPicksCommand(t *testing.T) {
	Convey("Given a stored picks file", t, func() {
		path := filepath.Join(t.TempDir(), "week.json")
		body := `{
    "1": {
        "name": "Ana",
        "pick": "Scheffler",
        "timestamp": "2025-07-02T20:00:00-04:00"
    }
}`
		So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)

		Convey("When it is printed", func() {
			out, err := run("picks", path)

			Convey("Then it reads like the reveal", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "- **Ana**: Scheffler *(submitted 2025-07-02 20:00:00 EDT)*")
			})
		})
	})
}

func TestServeHelpers(t *testing.T) {
	Convey("Given ledger credentials", t, func() {
		raw, err := readCredentials(` {"type":"service_account"}`)
		So(err, ShouldBeNil)
		So(string(raw), ShouldContainSubstring, "service_account")

		path := filepath.Join(t.TempDir(), "sa.json")
		So(os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600), ShouldBeNil)
		fromFile, err := readCredentials(path)
		So(err, ShouldBeNil)
		So(string(fromFile), ShouldEqual, `{"type":"service_account"}`)

		_, err = readCredentials(filepath.Join(t.TempDir(), "missing.json"))
		So(err, ShouldNotBeNil)
	})

	Convey("Given the default backend", t, func() {
		cfg := config.New(context.Background())
		cfg.DataDir = t.TempDir()
		cfg.PicksFile = "p.json"

		store, err := openStore(context.Background(), cfg)
		So(err, ShouldBeNil)
		fs, ok := store.(*repository.FileStore)
		So(ok, ShouldBeTrue)
		So(fs.Path(repository.CollectionPicks), ShouldEqual, filepath.Join(cfg.DataDir, "p.json"))
	})
}
