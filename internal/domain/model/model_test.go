package model_test

import (
	"testing"

	"github.com/okian/matchpoint/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePairingMode(t *testing.T) {
	Convey("Given pairing mode strings", t, func() {
		Convey("When parsing valid modes", func() {
			Convey("Then RANDOM and BALANCED parse case-insensitively", func() {
				mode, err := model.ParsePairingMode("RANDOM")
				So(err, ShouldBeNil)
				So(mode, ShouldEqual, model.PairingRandom)

				mode, err = model.ParsePairingMode("balanced")
				So(err, ShouldBeNil)
				So(mode, ShouldEqual, model.PairingBalanced)

				mode, err = model.ParsePairingMode("  Random ")
				So(err, ShouldBeNil)
				So(mode, ShouldEqual, model.PairingRandom)
			})
		})

		Convey("When parsing an unknown mode", func() {
			_, err := model.ParsePairingMode("SWISS")

			Convey("Then it should fail with the mode sentinel", func() {
				So(err, ShouldWrap, model.ErrUnknownPairingMode)
			})
		})
	})
}

func TestValidateLevel(t *testing.T) {
	Convey("Given the skill level range", t, func() {
		Convey("Then every level in 1..5 is accepted", func() {
			for level := model.MinLevel; level <= model.MaxLevel; level++ {
				So(model.ValidateLevel(level), ShouldBeNil)
			}
		})

		Convey("Then levels outside the range are rejected", func() {
			So(model.ValidateLevel(0), ShouldWrap, model.ErrLevelOutOfRange)
			So(model.ValidateLevel(6), ShouldWrap, model.ErrLevelOutOfRange)
			So(model.ValidateLevel(-3), ShouldWrap, model.ErrLevelOutOfRange)
		})
	})
}

func TestNewMatch(t *testing.T) {
	Convey("Given four player references", t, func() {
		a1 := model.PlayerRef{ID: "p1", Name: "Ana"}
		a2 := model.PlayerRef{ID: "p2", Name: "Ben"}
		b1 := model.PlayerRef{ID: "p3", Name: "Cleo"}
		b2 := model.PlayerRef{ID: "p4", Name: "Dan"}

		Convey("When the foursome is well formed", func() {
			m, err := model.NewMatch("m1", 2, true, a1, a2, b1, b2)

			Convey("Then the match starts PENDING with the round stamped", func() {
				So(err, ShouldBeNil)
				So(m.Status, ShouldEqual, model.MatchPending)
				So(m.Round, ShouldEqual, 2)
				So(m.IsRematch, ShouldBeTrue)
				So(m.PlayerIDs(), ShouldEqual, [4]string{"p1", "p2", "p3", "p4"})
			})

			Convey("Then the display name freezes creation-time names", func() {
				So(m.DisplayName(), ShouldEqual, "(D) Ana/Ben vs Cleo/Dan")
			})
		})

		Convey("When a player id is duplicated", func() {
			_, err := model.NewMatch("m1", 1, false, a1, a2, b1, model.PlayerRef{ID: "p1", Name: "Ana"})

			Convey("Then the foursome is rejected", func() {
				So(err, ShouldWrap, model.ErrInvalidFoursome)
			})
		})

		Convey("When a player id is missing", func() {
			_, err := model.NewMatch("m1", 1, false, a1, a2, b1, model.PlayerRef{Name: "Ghost"})

			Convey("Then the foursome is rejected", func() {
				So(err, ShouldWrap, model.ErrInvalidFoursome)
			})
		})
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Given fingerprints of player sets", t, func() {
		Convey("Then ordering and team assignment do not matter", func() {
			So(model.FingerprintOf("a", "b", "c", "d"), ShouldEqual, model.FingerprintOf("d", "c", "b", "a"))
		})

		Convey("Then different sets differ", func() {
			So(model.FingerprintOf("a", "b", "c", "d"), ShouldNotEqual, model.FingerprintOf("a", "b", "c", "e"))
		})

		Convey("Then a match fingerprint matches its unordered id set", func() {
			m, err := model.NewMatch("m1", 1, false,
				model.PlayerRef{ID: "p3"}, model.PlayerRef{ID: "p1"},
				model.PlayerRef{ID: "p4"}, model.PlayerRef{ID: "p2"})
			So(err, ShouldBeNil)
			So(m.Fingerprint(), ShouldEqual, model.FingerprintOf("p1", "p2", "p3", "p4"))
		})
	})
}
