package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it reports the format", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "xml")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When logging an info line with fields", func() {
			Get().Info(context.Background(), "rep added", String("name", "Alice"), Int("reps", 3))

			Convey("Then the fields and caller are encoded", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "rep added")
				So(line["name"], ShouldEqual, "Alice")
				So(line["reps"], ShouldEqual, float64(3))
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging time and arbitrary values", func() {
			at := time.Date(2025, 6, 28, 12, 0, 0, 0, time.UTC)
			Get().Info(context.Background(), "export served", Time("snapshot_at", at), Any("reps", []int{1, 2}))

			Convey("Then both are encoded", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["snapshot_at"], ShouldEqual, "2025-06-28T12:00:00Z")
				So(line["reps"], ShouldResemble, []any{float64(1), float64(2)})
			})
		})

		Convey("When logging below the active level", func() {
			Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When using a named logger", func() {
			Named("store").Warn(context.Background(), "save failed", Bool("retry", false))

			Convey("Then fields are grouped under the name", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				group, ok := line["store"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["retry"], ShouldEqual, false)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("DEBUG"), ShouldBeNil)
		So(SetLevelString("warning"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop logger accepts calls without output", t, func() {
		l := Nop()
		So(func() { l.Named("x").Error(context.Background(), "boom", Error(nil)) }, ShouldNotPanic)
	})
}
