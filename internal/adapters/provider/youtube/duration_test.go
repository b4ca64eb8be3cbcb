package youtube

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDurationMinutes(t *testing.T) {
	Convey("Given provider duration strings", t, func() {
		cases := []struct {
			in   string
			want float64
		}{
			{"PT1H2M3S", 62.05},
			{"PT10M", 10},
			{"PT2H", 120},
			{"PT30S", 0.5},
			{"PT1H30S", 60.5},
			{"PT0S", 0},
			{"", 0},
			{"1:02:03", 0},
			{"P1DT2H", 0},
			{"garbage", 0},
		}

		for _, tc := range cases {
			Convey("Parsing "+tc.in, func() {
				So(ParseDurationMinutes(tc.in), ShouldAlmostEqual, tc.want, 1e-9)
			})
		}
	})
}

func TestExtractVideoID(t *testing.T) {
	Convey("Given submitted video links", t, func() {
		Convey("Known URL shapes yield the video id", func() {
			for _, raw := range []string{
				"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				"https://youtu.be/dQw4w9WgXcQ",
				"https://www.youtube.com/shorts/dQw4w9WgXcQ",
				"https://www.youtube.com/embed/dQw4w9WgXcQ",
				"dQw4w9WgXcQ",
			} {
				id, ok := ExtractVideoID(raw)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "dQw4w9WgXcQ")
			}
		})

		Convey("Unrecognizable links are rejected", func() {
			for _, raw := range []string{
				"https://example.com/watch?v=dQw4w9WgXcQ",
				"https://youtu.be/short",
				"",
				"not a url at all",
			} {
				_, ok := ExtractVideoID(raw)
				So(ok, ShouldBeFalse)
			}
		})
	})
}
