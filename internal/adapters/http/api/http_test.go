package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/launchdash/internal/adapters/http/api"
	"github.com/okian/launchdash/internal/domain/launches"
	"github.com/okian/launchdash/internal/domain/model"
	"github.com/okian/launchdash/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies answers from an in-memory dataset through the real
// aggregate functions.
type mockDependencies struct {
	ds        *model.Dataset
	err       error
	renderErr error
	lastRange types.Range
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{ds: model.NewDataset([]model.Launch{
		{Site: "siteA", PayloadMassKG: 500, BoosterCategory: "FT", Outcome: model.Success},
		{Site: "siteA", PayloadMassKG: 1500, BoosterCategory: "FT", Outcome: model.Failure},
		{Site: "siteB", PayloadMassKG: 800, BoosterCategory: "B4", Outcome: model.Success},
	})}
}

func (m *mockDependencies) Sites(context.Context) ([]types.SiteOption, error) {
	return launches.SiteOptions(m.ds), m.err
}

func (m *mockDependencies) Summary(context.Context) (types.DatasetSummary, error) {
	return launches.Summarize(m.ds), m.err
}

func (m *mockDependencies) SliderBounds(context.Context) (types.SliderBounds, error) {
	b := launches.Bounds(m.ds)
	return types.SliderBounds{Min: b.Min, Max: b.Max, Step: 1000, Initial: b}, m.err
}

func (m *mockDependencies) SuccessPie(_ context.Context, site string) (types.PieChart, error) {
	return launches.SuccessPie(m.ds, site), m.err
}

func (m *mockDependencies) PayloadScatter(_ context.Context, site string, rng types.Range) (types.ScatterChart, error) {
	m.lastRange = rng
	return launches.PayloadScatter(m.ds, site, rng), m.err
}

func (m *mockDependencies) SuccessPieSVG(_ context.Context, site string) ([]byte, error) {
	if m.renderErr != nil {
		return nil, m.renderErr
	}
	return []byte("<svg>" + site + "</svg>"), nil
}

func (m *mockDependencies) PayloadScatterSVG(_ context.Context, site string, rng types.Range) ([]byte, error) {
	m.lastRange = rng
	if m.renderErr != nil {
		return nil, m.renderErr
	}
	return []byte("<svg>" + site + "</svg>"), nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDependencies()
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When requesting every route", func() {
			routes := []string{
				"/healthz",
				"/stats",
				"/api/sites",
				"/api/summary",
				"/api/success-pie",
				"/api/payload-scatter",
				"/charts/success-pie.svg",
				"/charts/payload-scatter.svg",
			}

			Convey("Then each should answer 200", func() {
				for _, route := range routes {
					So(serve(mux, http.MethodGet, route).Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("And non-GET methods should be rejected with 404", func() {
				for _, route := range routes {
					So(serve(mux, http.MethodPost, route).Code, ShouldEqual, http.StatusNotFound)
				}
			})
		})

		Convey("When requesting an unregistered path", func() {
			w := serve(mux, http.MethodGet, "/unknown")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSitesHandler(t *testing.T) {
	Convey("Given the sites routes", t, func() {
		deps := newMockDependencies()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When listing sites", func() {
			w := serve(mux, http.MethodGet, "/api/sites")
			var sites []types.SiteOption
			So(json.Unmarshal(w.Body.Bytes(), &sites), ShouldBeNil)

			Convey("Then All Sites should lead the dataset sites", func() {
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(sites, ShouldResemble, []types.SiteOption{
					{Label: "All Sites", Value: "ALL"},
					{Label: "siteA", Value: "siteA"},
					{Label: "siteB", Value: "siteB"},
				})
			})
		})

		Convey("When reading the summary", func() {
			w := serve(mux, http.MethodGet, "/api/summary")
			var body struct {
				Records int                `json:"records"`
				Slider  types.SliderBounds `json:"slider"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then it should carry the record count and slider bounds", func() {
				So(body.Records, ShouldEqual, 3)
				So(body.Slider.Min, ShouldEqual, 500)
				So(body.Slider.Max, ShouldEqual, 1500)
				So(body.Slider.Step, ShouldEqual, 1000)
			})
		})

		Convey("When the service is unavailable", func() {
			deps.err = errors.New("service not started")
			w := serve(mux, http.MethodGet, "/api/sites")

			Convey("Then an internal error should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}

func TestPieHandler(t *testing.T) {
	Convey("Given the pie routes", t, func() {
		deps := newMockDependencies()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When requesting the pie without a site", func() {
			w := serve(mux, http.MethodGet, "/api/success-pie")
			var pie types.PieChart
			So(json.Unmarshal(w.Body.Bytes(), &pie), ShouldBeNil)

			Convey("Then successes should be counted per site", func() {
				So(pie.Site, ShouldEqual, "ALL")
				So(pie.BySite, ShouldResemble, []types.SiteSuccess{
					{Site: "siteA", Successes: 1},
					{Site: "siteB", Successes: 1},
				})
			})
		})

		Convey("When requesting a single site", func() {
			w := serve(mux, http.MethodGet, "/api/success-pie?site=siteA")
			var pie types.PieChart
			So(json.Unmarshal(w.Body.Bytes(), &pie), ShouldBeNil)

			Convey("Then outcomes should be counted for that site", func() {
				So(pie.ByOutcome, ShouldResemble, []types.OutcomeCount{
					{Outcome: 0, Label: "Failure", Count: 1},
					{Outcome: 1, Label: "Success", Count: 1},
				})
			})
		})

		Convey("When requesting an unknown site", func() {
			w := serve(mux, http.MethodGet, "/api/success-pie?site=nowhere")

			Convey("Then it should answer 200 with empty slices", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"slices":[]`)
			})
		})

		Convey("When requesting the lowercase sentinel", func() {
			w := serve(mux, http.MethodGet, "/api/success-pie?site=all")

			Convey("Then it should be treated as an unknown site", func() {
				So(w.Body.String(), ShouldContainSubstring, `"slices":[]`)
			})
		})

		Convey("When requesting the SVG", func() {
			w := serve(mux, http.MethodGet, "/charts/success-pie.svg?site=siteB")

			Convey("Then SVG bytes should be served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(w.Body.String(), ShouldEqual, "<svg>siteB</svg>")
			})
		})

		Convey("When rendering fails", func() {
			deps.renderErr = errors.New("font missing")
			w := serve(mux, http.MethodGet, "/charts/success-pie.svg")

			Convey("Then render_failed should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "render_failed")
				So(body["message"], ShouldContainSubstring, "api.get_pie_svg")
				So(body["message"], ShouldContainSubstring, "font missing")
			})
		})
	})
}

func TestScatterHandler(t *testing.T) {
	Convey("Given the scatter routes", t, func() {
		deps := newMockDependencies()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When min and max are omitted", func() {
			w := serve(mux, http.MethodGet, "/api/payload-scatter")
			var sc types.ScatterChart
			So(json.Unmarshal(w.Body.Bytes(), &sc), ShouldBeNil)

			Convey("Then the data bounds should be used", func() {
				So(deps.lastRange, ShouldResemble, types.Range{Min: 500, Max: 1500})
				So(sc.Points, ShouldHaveLength, 3)
			})
		})

		Convey("When only min is given", func() {
			serve(mux, http.MethodGet, "/api/payload-scatter?min=700")

			Convey("Then max should default to the data maximum", func() {
				So(deps.lastRange, ShouldResemble, types.Range{Min: 700, Max: 1500})
			})
		})

		Convey("When a site and range are given", func() {
			w := serve(mux, http.MethodGet, "/api/payload-scatter?site=siteA&min=0&max=2000")
			var sc types.ScatterChart
			So(json.Unmarshal(w.Body.Bytes(), &sc), ShouldBeNil)

			Convey("Then both siteA launches should be returned in order", func() {
				So(sc.Points, ShouldHaveLength, 2)
				So(sc.Points[0].PayloadMassKG, ShouldEqual, 500)
				So(sc.Points[1].PayloadMassKG, ShouldEqual, 1500)
			})
		})

		Convey("When the range is inverted", func() {
			w := serve(mux, http.MethodGet, "/api/payload-scatter?site=siteA&min=5000&max=4000")

			Convey("Then it should answer 200 with no points", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"points":[]`)
			})
		})

		Convey("When min is not a number", func() {
			for _, target := range []string{
				"/api/payload-scatter?min=heavy",
				"/api/payload-scatter?max=NaN",
				"/charts/payload-scatter.svg?min=1&max=Inf",
			} {
				w := serve(mux, http.MethodGet, target)

				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When requesting the SVG", func() {
			w := serve(mux, http.MethodGet, "/charts/payload-scatter.svg?site=siteB&min=0&max=1000")

			Convey("Then SVG bytes should be served for the requested range", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(deps.lastRange, ShouldResemble, types.Range{Min: 0, Max: 1000})
			})
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		h := api.NewStatsHandler(&mockStatsProvider{stats: map[string]interface{}{"records": 56}})

		Convey("When requesting stats", func() {
			w := serve(http.HandlerFunc(h.HandleStats), http.MethodGet, "/stats")
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then the provider's stats should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["records"], ShouldEqual, float64(56))
			})
		})
	})
}

func TestHealthHandler(t *testing.T) {
	Convey("Given a health handler", t, func() {
		h := api.NewHealthHandler()

		Convey("When scraping it after a request was recorded", func() {
			mw := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}, "teapot")
			serve(mw, http.MethodGet, "/teapot")
			w := serve(http.HandlerFunc(h.HandleHealth), http.MethodGet, "/healthz")

			Convey("Then Prometheus text should include the request metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "launchdash_dashboard_http_requests_total")
				So(body, ShouldContainSubstring, `endpoint="teapot"`)
				So(body, ShouldContainSubstring, "launchdash_dashboard_errors_by_endpoint_total")
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get(api.RequestIDHeader)
		}))

		Convey("When the caller sends no id", func() {
			w := serve(h, http.MethodGet, "/")

			Convey("Then a UUID should be assigned and echoed", func() {
				_, err := uuid.Parse(w.Header().Get(api.RequestIDHeader))
				So(err, ShouldBeNil)
				So(seen, ShouldEqual, w.Header().Get(api.RequestIDHeader))
			})
		})

		Convey("When the caller sends a valid id", func() {
			id := uuid.NewString()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(api.RequestIDHeader, id)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be kept", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, id)
				So(seen, ShouldEqual, id)
			})
		})

		Convey("When the caller sends garbage", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(api.RequestIDHeader, strings.Repeat("x", 64))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be replaced", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldNotContainSubstring, "xxxx")
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API error helpers", t, func() {
		cause := errors.New("boom")

		Convey("Then NewKind should match its kind", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Then WrapKind should match both kind and cause", func() {
			err := api.WrapKind("api.op", api.ErrRender, cause)
			So(errors.Is(err, api.ErrRender), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: render failed: boom")
		})

		Convey("Then Wrap should keep the cause and pass nil through", func() {
			So(errors.Is(api.Wrap("api.op", cause), cause), ShouldBeTrue)
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("Then errors.As should expose the operation", func() {
			var apiErr *api.Error
			So(errors.As(api.Wrap("api.get_scatter", cause), &apiErr), ShouldBeTrue)
			So(apiErr.Op, ShouldEqual, "api.get_scatter")
		})
	})
}
