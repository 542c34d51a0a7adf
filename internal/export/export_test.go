package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/export"
	. "github.com/smartystreets/goconvey/convey"
)

func reps() []model.Representative {
	alice := model.NewRepresentative(1, "Alice")
	alice.AppendDeal(model.DealRecord{Date: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), Amount: 1000})
	alice.AppendDeal(model.DealRecord{Date: time.Date(2025, 6, 3, 17, 45, 0, 0, time.UTC), Amount: 500.5})
	smith := model.NewRepresentative(2, "Smith, Jr.")
	legacy := model.Representative{ID: 3, Name: "Bob", Deals: 3}
	return []model.Representative{alice, smith, legacy}
}

func TestCSV(t *testing.T) {
	Convey("Given representatives with and without deals", t, func() {
		var buf bytes.Buffer

		Convey("When exporting to CSV", func() {
			So(export.CSV(&buf, reps()), ShouldBeNil)

			Convey("Then the summary and history sections are written", func() {
				want := "Sales Rep,Total Deals,Total Revenue,Average Deal Size,Last Deal Date\n" +
					"Alice,2,1500.50,750.25,2025-06-03\n" +
					"\"Smith, Jr.\",0,0.00,0.00,\n" +
					"Bob,3,0.00,0.00,\n" +
					"\n" +
					"Detailed Deal History\n" +
					"Sales Rep,Date,Amount\n" +
					"Alice,2025-06-01T09:00:00.000Z,1000.00\n" +
					"Alice,2025-06-03T17:45:00.000Z,500.50\n"
				So(buf.String(), ShouldEqual, want)
			})
		})

		Convey("When exporting in another zone", func() {
			plus3 := time.FixedZone("UTC+3", 3*3600)
			So(export.CSV(&buf, reps()[:1], export.WithLocation(plus3)), ShouldBeNil)

			Convey("Then dates are written in that zone", func() {
				So(buf.String(), ShouldContainSubstring, "Alice,2025-06-03T20:45:00.000+03:00,500.50")
			})
		})
	})

	Convey("Given no representatives", t, func() {
		var buf bytes.Buffer
		err := export.CSV(&buf, nil)

		Convey("Then the export is rejected and nothing is written", func() {
			So(errors.Is(err, export.ErrNothingToExport), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}

func TestJSON(t *testing.T) {
	Convey("Given representatives", t, func() {
		var buf bytes.Buffer
		now := time.Date(2025, 6, 28, 12, 0, 0, 0, time.UTC)

		So(export.JSON(&buf, reps(), now), ShouldBeNil)

		var got struct {
			ExportDate   string                 `json:"exportDate"`
			TotalReps    int                    `json:"totalReps"`
			TotalDeals   int                    `json:"totalDeals"`
			TotalRevenue float64                `json:"totalRevenue"`
			SalesReps    []model.Representative `json:"salesReps"`
		}
		So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)

		Convey("Then lifetime totals and the full list are written", func() {
			So(got.ExportDate, ShouldEqual, "2025-06-28T12:00:00.000Z")
			So(got.TotalReps, ShouldEqual, 3)
			So(got.TotalDeals, ShouldEqual, 5)
			So(got.TotalRevenue, ShouldEqual, 1500.5)
			So(len(got.SalesReps), ShouldEqual, 3)
			So(got.SalesReps[0].Equal(reps()[0]), ShouldBeTrue)
		})

		Convey("Then missing histories are written as empty arrays", func() {
			So(buf.String(), ShouldNotContainSubstring, "null")
		})
	})

	Convey("Given no representatives", t, func() {
		var buf bytes.Buffer
		So(export.JSON(&buf, nil, time.Now(), export.WithIndent("")), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, `"salesReps":[]`)
	})
}

func TestFormat(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := export.ParseFormat(" CSV ")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, export.FormatCSV)

		_, err = export.ParseFormat("xlsx")
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)

		So(export.FormatJSON.ContentType(), ShouldEqual, "application/json")

		err = export.Write(&bytes.Buffer{}, export.Format("pdf"), reps(), time.Now())
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
	})

	Convey("File names carry the export date", t, func() {
		now := time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC)
		So(export.FileName(export.FormatCSV, now), ShouldEqual, "sales-report-2025-01-09.csv")
		So(export.FileName(export.FormatJSON, now), ShouldEqual, "sales-report-2025-01-09.json")
	})
}
