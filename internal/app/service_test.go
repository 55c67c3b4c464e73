package service_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/picks"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWith(os.Stderr, logger.FormatText); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

type post struct{ to, text string }

// fakeChat records every message. failFor makes sends to those ids fail.
type fakeChat struct {
	mu         sync.Mutex
	posts      []post
	dms        []post
	members    []chat.Member
	membersErr error
	failFor    map[string]bool
}

func (f *fakeChat) SendChannel(_ context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[channelID] {
		return errors.New("missing access")
	}
	f.posts = append(f.posts, post{channelID, text})
	return nil
}

func (f *fakeChat) SendDirect(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[userID] {
		return errors.New("cannot send messages to this user")
	}
	f.dms = append(f.dms, post{userID, text})
	return nil
}

func (f *fakeChat) Members(context.Context) ([]chat.Member, error) {
	return f.members, f.membersErr
}

func (f *fakeChat) Posts() []post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]post(nil), f.posts...)
}

func newStore(t *testing.T, events string) *repository.FileStore {
	store := repository.NewFileStore(t.TempDir())
	if events != "" {
		if err := os.WriteFile(store.Path(repository.CollectionEvents), []byte(events), 0o600); err != nil {
			t.Fatalf("write events: %v", err)
		}
	}
	return store
}

func eastern(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func TestServiceNew(t *testing.T) {
	Convey("Given a corrupt picks file", t, func() {
		store := newStore(t, "")
		So(os.WriteFile(store.Path(repository.CollectionPicks), []byte("{not json"), 0o600), ShouldBeNil)

		Convey("Then the service refuses to start", func() {
			_, err := service.New(context.Background(), store, &fakeChat{})
			So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
		})
	})

	Convey("Given an invalid schedule", t, func() {
		_, err := service.New(context.Background(), newStore(t, ""), &fakeChat{},
			service.WithSchedules("every wednesday", "", ""))
		So(err, ShouldNotBeNil)
	})

	Convey("Given a service that was never started", t, func() {
		svc, err := service.New(context.Background(), newStore(t, ""), &fakeChat{})
		So(err, ShouldBeNil)
		So(errors.Is(svc.Stop(context.Background()), service.ErrNotStarted), ShouldBeTrue)
		So(svc.GetStats()["started"], ShouldEqual, false)
	})
}

func TestReveal(t *testing.T) {
	Convey("Given two pending picks", t, func() {
		ctx := context.Background()
		loc := eastern(t)
		store := newStore(t, "")
		fc := &fakeChat{failFor: map[string]bool{}}
		svc, err := service.New(ctx, store, fc, service.WithLocation(loc), service.WithRevealChannel("reveal"))
		So(err, ShouldBeNil)

		for _, m := range []chat.Message{
			{AuthorID: "1", AuthorName: "Ana", ChannelID: "dm1", Private: true, Content: "!pick Scheffler"},
			{AuthorID: "2", AuthorName: "Bo", ChannelID: "dm2", Private: true, Content: "!pick McIlroy"},
		} {
			_, handled := svc.Commands().Dispatch(ctx, m)
			So(handled, ShouldBeTrue)
		}

		Convey("When the reveal is posted", func() {
			n, err := svc.Reveal(ctx)
			So(err, ShouldBeNil)

			Convey("Then both picks are listed and cleared", func() {
				So(n, ShouldEqual, 2)
				posts := fc.Posts()
				So(len(posts), ShouldEqual, 1)
				So(posts[0].to, ShouldEqual, "reveal")
				So(posts[0].text, ShouldStartWith, picks.RevealHeader)
				So(posts[0].text, ShouldContainSubstring, "- **Ana**: Scheffler")
				So(posts[0].text, ShouldContainSubstring, "- **Bo**: McIlroy")
				So(svc.GetStats()["picks"], ShouldEqual, 0)
			})

			Convey("And a second reveal posts the no-picks notice", func() {
				n, err := svc.Reveal(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(fc.Posts()[1].text, ShouldEqual, picks.NoPicks)
			})
		})

		Convey("When the reveal channel rejects the post", func() {
			fc.failFor["reveal"] = true
			_, err := svc.Reveal(ctx)

			Convey("Then the picks are kept for a retry", func() {
				So(errors.Is(err, service.ErrDelivery), ShouldBeTrue)
				So(svc.GetStats()["picks"], ShouldEqual, 2)
			})
		})
	})
}

func TestRemind(t *testing.T) {
	Convey("Given three humans, a bot and one closed inbox", t, func() {
		ctx := context.Background()
		fc := &fakeChat{
			members: []chat.Member{
				{ID: "1", Name: "Ana"},
				{ID: "2", Name: "Bo"},
				{ID: "9", Name: "fairway", Bot: true},
				{ID: "3", Name: "Cy"},
			},
			failFor: map[string]bool{"2": true},
		}
		svc, err := service.New(ctx, newStore(t, `{"Masters": 1000000}`), fc)
		So(err, ShouldBeNil)

		Convey("When reminders go out", func() {
			report, err := svc.Remind(ctx)
			So(err, ShouldBeNil)

			Convey("Then the failure is isolated and bots are skipped", func() {
				So(len(report.Deliveries), ShouldEqual, 3)
				So(report.Delivered(), ShouldEqual, 2)
				failed := report.Failed()
				So(len(failed), ShouldEqual, 1)
				So(failed[0].Member.ID, ShouldEqual, "2")
				So(errors.Is(failed[0].Err, service.ErrDelivery), ShouldBeTrue)
				So(len(fc.dms), ShouldEqual, 2)
				So(fc.dms[0].text, ShouldContainSubstring, "**Masters**")
			})
		})

		Convey("When the member list is unavailable", func() {
			fc.membersErr = errors.New("missing intent")
			_, err := svc.Remind(ctx)
			So(errors.Is(err, service.ErrDirectory), ShouldBeTrue)
			So(fc.dms, ShouldBeEmpty)
		})
	})
}

func TestReminderText(t *testing.T) {
	Convey("Given the upcoming event", t, func() {
		So(service.ReminderText(model.EventEntry{Name: "Masters"}, true, "!"), ShouldContainSubstring, "`!pick <golfer>`")
		So(service.ReminderText(model.EventEntry{Name: "Open / Barracuda"}, true, "!"), ShouldContainSubstring, "`!pick <golfer> / <golfer>`")
		So(service.ReminderText(model.EventEntry{}, false, "?"), ShouldContainSubstring, "`?pick <golfer>`")
	})
}
