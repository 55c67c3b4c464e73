package model_test

import (
	"errors"
	"testing"

	"github.com/okian/fairway/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEventEntry(t *testing.T) {
	Convey("Given event entries", t, func() {
		single := model.EventEntry{Name: "Masters", Value: 20_000_000}
		dual := model.EventEntry{Name: "Barracuda Championship / Scottish Open", Value: 13_000_000}

		Convey("Then only names with the separator are dual", func() {
			So(single.IsDual(), ShouldBeFalse)
			So(dual.IsDual(), ShouldBeTrue)
			So(model.EventEntry{Name: "AT&T/Pebble"}.IsDual(), ShouldBeFalse)
		})

		Convey("And events are split and trimmed", func() {
			So(single.Events(), ShouldResemble, []string{"Masters"})
			So(dual.Events(), ShouldResemble, []string{"Barracuda Championship", "Scottish Open"})
		})
	})
}

func TestMoney(t *testing.T) {
	Convey("Money renders dollars", t, func() {
		So(model.Money(1234.5), ShouldEqual, "$1,234.50")
		So(model.Money(-20), ShouldEqual, "-$20.00")
		So(model.Money(0), ShouldEqual, "$0.00")
		So(model.WholeMoney(20_000_000), ShouldEqual, "$20,000,000")
	})
}

func TestParseMoney(t *testing.T) {
	Convey("Given ledger-style strings", t, func() {
		cases := map[string]float64{
			"$1,234.50":  1234.5,
			" 42 ":       42,
			"-$20":       -20,
			"($1,000)":   -1000,
			"1 000 000":  1000000,
			"$0.00":      0,
			"20000000.5": 20000000.5,
		}
		for in, want := range cases {
			got, err := model.ParseMoney(in)
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, want)
		}

		Convey("Then garbage is an error", func() {
			for _, in := range []string{"", "$", "abc", "#REF!", "NaN"} {
				_, err := model.ParseMoney(in)
				So(errors.Is(err, model.ErrNotANumber), ShouldBeTrue)
			}
		})
	})
}
