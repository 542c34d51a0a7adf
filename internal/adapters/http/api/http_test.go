package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/salestrack/internal/adapters/http/api"
	"github.com/okian/salestrack/internal/adapters/kv"
	"github.com/okian/salestrack/internal/adapters/repository"
	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/internal/domain/model"
	"github.com/okian/salestrack/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 28, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc    *app.Service
	store  *kv.Memory
	router http.Handler
}

func newFixture() fixture {
	store := kv.NewMemory()
	svc := app.New(
		app.WithStore(repository.New(store)),
		app.WithClock(window.FixedClock{T: now}),
		app.WithLocation(time.UTC),
	)
	svc.Start(context.Background())
	return fixture{svc: svc, store: store, router: api.NewServer(svc).Router()}
}

func (f fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f fixture) addRep(name string) model.Representative {
	rep, _, err := f.svc.AddRepresentative(context.Background(), name)
	So(err, ShouldBeNil)
	return rep
}

type mutation struct {
	Changed   bool                  `json:"changed"`
	Duplicate bool                  `json:"duplicate"`
	Warnings  []string              `json:"warnings"`
	Rep       *model.Representative `json:"rep"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the router", t, func() {
		f := newFixture()

		Convey("Health reports ok", func() {
			w := f.do(http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Metrics are exposed", func() {
			f.do(http.MethodGet, "/healthz", "")
			w := f.do(http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "salestrack_dashboard_http_requests_total")
		})

		Convey("The OpenAPI document is served", func() {
			w := f.do(http.MethodGet, "/openapi.yaml", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/export.csv")
		})

		Convey("Request ids are generated or echoed", func() {
			w := f.do(http.MethodGet, "/healthz", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			w = f.do(http.MethodGet, "/healthz", "", api.RequestIDHeader, "abc-123")
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("Unknown routes are 404", func() {
			So(f.do(http.MethodGet, "/api/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRepsRoutes(t *testing.T) {
	Convey("Given an empty dashboard", t, func() {
		f := newFixture()

		Convey("When adding a representative", func() {
			w := f.do(http.MethodPost, "/api/reps", `{"name":"  Alice "}`)

			Convey("Then it is created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				m := decode[mutation](w)
				So(m.Changed, ShouldBeTrue)
				So(m.Warnings, ShouldNotBeNil)
				So(m.Rep.Name, ShouldEqual, "Alice")

				list := decode[[]model.Representative](f.do(http.MethodGet, "/api/reps", ""))
				So(len(list), ShouldEqual, 1)
			})

			Convey("And adding a case variant", func() {
				w := f.do(http.MethodPost, "/api/reps", `{"name":"ALICE"}`)

				Convey("Then it conflicts", func() {
					So(w.Code, ShouldEqual, http.StatusConflict)
					So(decode[apiError](w).Code, ShouldEqual, "duplicate_name")
				})
			})
		})

		Convey("When adding a blank name", func() {
			w := f.do(http.MethodPost, "/api/reps", `{"name":"   "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[apiError](w).Code, ShouldEqual, "empty_name")
		})

		Convey("When the body is not JSON", func() {
			So(f.do(http.MethodPost, "/api/reps", `name=Alice`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When persistence fails", func() {
			f.store.FailSets(errors.New("quota exceeded"))
			w := f.do(http.MethodPost, "/api/reps", `{"name":"Alice"}`)

			Convey("Then the rep is still created and a warning returned", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				m := decode[mutation](w)
				So(len(m.Warnings), ShouldEqual, 1)
				So(len(f.svc.Representatives(context.Background())), ShouldEqual, 1)
			})
		})
	})
}

func TestRemoveRoute(t *testing.T) {
	Convey("Given a representative", t, func() {
		f := newFixture()
		rep := f.addRep("Alice")
		path := fmt.Sprintf("/api/reps/%d", rep.ID)

		Convey("Removal without confirmation is refused", func() {
			w := f.do(http.MethodDelete, path, "")
			So(w.Code, ShouldEqual, http.StatusPreconditionRequired)
			So(len(f.svc.Representatives(context.Background())), ShouldEqual, 1)
		})

		Convey("Confirmed removal deletes it", func() {
			w := f.do(http.MethodDelete, path+"?confirm=true", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[mutation](w).Changed, ShouldBeTrue)
			So(f.svc.Representatives(context.Background()), ShouldBeEmpty)
		})

		Convey("Removing an unknown id is a no-op", func() {
			w := f.do(http.MethodDelete, "/api/reps/1?confirm=true", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[mutation](w).Changed, ShouldBeFalse)
		})

		Convey("A malformed id is rejected", func() {
			w := f.do(http.MethodDelete, "/api/reps/abc?confirm=true", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[apiError](w).Code, ShouldEqual, "invalid_id")
		})
	})
}

func TestDealRoute(t *testing.T) {
	Convey("Given a representative", t, func() {
		f := newFixture()
		rep := f.addRep("Alice")
		path := fmt.Sprintf("/api/reps/%d/deals", rep.ID)

		Convey("A numeric amount is recorded", func() {
			w := f.do(http.MethodPost, path, `{"amount":1500.5}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			m := decode[mutation](w)
			So(m.Changed, ShouldBeTrue)
			So(m.Rep.Deals, ShouldEqual, 1)
			So(m.Rep.Revenue, ShouldEqual, 1500.5)
		})

		Convey("Text amounts are parsed or coerced to zero", func() {
			So(decode[mutation](f.do(http.MethodPost, path, `{"amount":"250"}`)).Rep.Revenue, ShouldEqual, 250)
			m := decode[mutation](f.do(http.MethodPost, path, `{"amount":"lots"}`))
			So(m.Rep.Deals, ShouldEqual, 2)
			So(m.Rep.Revenue, ShouldEqual, 250)
			m = decode[mutation](f.do(http.MethodPost, path, `{}`))
			So(m.Rep.Deals, ShouldEqual, 3)
		})

		Convey("An unknown id changes nothing", func() {
			w := f.do(http.MethodPost, "/api/reps/7/deals", `{"amount":10}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[mutation](w).Changed, ShouldBeFalse)
		})

		Convey("A retried submission with the same key is applied once", func() {
			first := f.do(http.MethodPost, path, `{"amount":100}`, api.IdempotencyKeyHeader, "k-1")
			second := f.do(http.MethodPost, path, `{"amount":100}`, api.IdempotencyKeyHeader, "k-1")

			So(decode[mutation](first).Changed, ShouldBeTrue)
			So(decode[mutation](second).Duplicate, ShouldBeTrue)
			got, _ := f.svc.Representative(context.Background(), rep.ID)
			So(got.Deals, ShouldEqual, 1)

			Convey("And a new key is applied again", func() {
				f.do(http.MethodPost, path, `{"amount":100}`, api.IdempotencyKeyHeader, "k-2")
				got, _ := f.svc.Representative(context.Background(), rep.ID)
				So(got.Deals, ShouldEqual, 2)
			})
		})

		Convey("A key used against an unknown id stays usable", func() {
			next := fmt.Sprintf("/api/reps/%d/deals", rep.ID+1)
			first := f.do(http.MethodPost, next, `{"amount":40}`, api.IdempotencyKeyHeader, "k-3")
			So(decode[mutation](first).Changed, ShouldBeFalse)

			bob := f.addRep("Bob")
			So(bob.ID, ShouldEqual, rep.ID+1)

			retry := decode[mutation](f.do(http.MethodPost, next, `{"amount":40}`, api.IdempotencyKeyHeader, "k-3"))
			So(retry.Duplicate, ShouldBeFalse)
			So(retry.Changed, ShouldBeTrue)
			got, _ := f.svc.Representative(context.Background(), bob.ID)
			So(got.Deals, ShouldEqual, 1)
		})
	})
}

func TestFilterAndDashboardRoutes(t *testing.T) {
	Convey("Given deals recorded now", t, func() {
		f := newFixture()
		rep := f.addRep("Alice")
		_, _, _ = f.svc.RecordDeal(context.Background(), rep.ID, 300)

		Convey("The default filter is all", func() {
			w := f.do(http.MethodGet, "/api/filter", "")
			So(w.Body.String(), ShouldContainSubstring, `"selector":"all"`)
		})

		Convey("Setting week changes the active filter", func() {
			w := f.do(http.MethodPut, "/api/filter", `{"selector":"week"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(f.svc.Filter(context.Background()).Selector, ShouldEqual, window.Week)
		})

		Convey("An incomplete custom range is rejected and the filter kept", func() {
			f.do(http.MethodPut, "/api/filter", `{"selector":"month"}`)
			w := f.do(http.MethodPut, "/api/filter", `{"selector":"custom","start":"2025-06-01"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[apiError](w).Code, ShouldEqual, "incomplete_range")
			So(f.svc.Filter(context.Background()).Selector, ShouldEqual, window.Month)
		})

		Convey("An unknown selector is rejected", func() {
			w := f.do(http.MethodPut, "/api/filter", `{"selector":"fortnight"}`)
			So(decode[apiError](w).Code, ShouldEqual, "unknown_selector")
		})

		Convey("The dashboard reflects the filter", func() {
			d := decode[app.Dashboard](f.do(http.MethodGet, "/api/dashboard", ""))
			So(d.Summary.TotalDeals, ShouldEqual, 1)
			So(d.Summary.TotalRevenue, ShouldEqual, 300)
			So(d.TopPerformer.Name, ShouldEqual, "Alice")
			So(d.DealsToday, ShouldEqual, 1)

			Convey("And a query window does not change the active one", func() {
				q := "/api/dashboard?filter=custom&from=2024-01-01&to=2024-12-31"
				d := decode[app.Dashboard](f.do(http.MethodGet, q, ""))
				So(d.Summary.TotalDeals, ShouldEqual, 0)
				So(f.svc.Filter(context.Background()).Selector, ShouldEqual, window.All)
			})
		})
	})
}

func TestExportRoutes(t *testing.T) {
	Convey("Given no representatives", t, func() {
		f := newFixture()

		Convey("CSV export is refused", func() {
			w := f.do(http.MethodGet, "/api/export.csv", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(decode[apiError](w).Code, ShouldEqual, "nothing_to_export")
		})

		Convey("JSON export is an empty report", func() {
			w := f.do(http.MethodGet, "/api/export.json", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"totalReps": 0`)
		})
	})

	Convey("Given a representative with a deal", t, func() {
		f := newFixture()
		rep := f.addRep("Alice")
		_, _, _ = f.svc.RecordDeal(context.Background(), rep.ID, 99.5)

		Convey("CSV export is an attachment", func() {
			w := f.do(http.MethodGet, "/api/export.csv", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(w.Header().Get("Content-Disposition"), ShouldEqual, "attachment; filename=sales-report-2025-06-28.csv")
			So(w.Body.String(), ShouldContainSubstring, "Alice,1,99.50,99.50,2025-06-28")
		})

		Convey("JSON export carries lifetime totals", func() {
			w := f.do(http.MethodGet, "/api/export.json", "")
			So(w.Header().Get("Content-Disposition"), ShouldEqual, "attachment; filename=sales-report-2025-06-28.json")
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["totalDeals"], ShouldEqual, float64(1))
			So(body["totalRevenue"], ShouldEqual, 99.5)
		})
	})
}
