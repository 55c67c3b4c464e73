package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/fairway/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a new guard", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard()
		So(g.Size(), ShouldEqual, 0)

		Convey("When a fire key is recorded twice", func() {
			at := time.Date(2025, 7, 2, 21, 0, 0, 0, time.UTC)
			key := dedupe.FireKey("reveal", at)

			Convey("Then only the first call is new", func() {
				So(g.SeenAndRecord(ctx, key), ShouldBeFalse)
				So(g.SeenAndRecord(ctx, key), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And the next week's instant is distinct", func() {
				So(g.SeenAndRecord(ctx, key), ShouldBeFalse)
				So(g.SeenAndRecord(ctx, dedupe.FireKey("reveal", at.AddDate(0, 0, 7))), ShouldBeFalse)
				So(g.SeenAndRecord(ctx, dedupe.FireKey("rotate", at)), ShouldBeFalse)
			})
		})

		Convey("When a key is unrecorded", func() {
			g.SeenAndRecord(ctx, "reveal@x")
			g.Unrecord(ctx, "reveal@x")
			g.Unrecord(ctx, "never-recorded")

			Convey("Then it may fire again", func() {
				So(g.Size(), ShouldEqual, 0)
				So(g.SeenAndRecord(ctx, "reveal@x"), ShouldBeFalse)
			})
		})
	})
}

func TestGuardBounded(t *testing.T) {
	Convey("Given a guard holding three keys", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard(dedupe.WithMaxSize(3))
		for _, k := range []string{"a", "b", "c"} {
			So(g.SeenAndRecord(ctx, k), ShouldBeFalse)
		}

		Convey("When a fourth key arrives", func() {
			So(g.SeenAndRecord(ctx, "d"), ShouldBeFalse)

			Convey("Then the oldest key is forgotten", func() {
				So(g.Size(), ShouldEqual, 3)
				So(g.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(g.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(g.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded guard", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard(dedupe.WithMaxSize(0))
		for i := range 1000 {
			g.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
		}
		So(g.Size(), ShouldEqual, 1000)
		So(g.SeenAndRecord(ctx, "k-0"), ShouldBeTrue)
	})
}

func TestGuardConcurrency(t *testing.T) {
	Convey("Given concurrent callers racing on one key", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !g.SeenAndRecord(ctx, "reveal@now") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		So(fresh, ShouldEqual, 1)
	})
}
