package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When registering the site handler", func() {
			So(Register(ctx, mux), ShouldBeNil)

			Convey("Then it should serve the dashboard at /", func() {
				req := httptest.NewRequest("GET", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, "<title>SpaceX Launch Records Dashboard</title>")
				So(body, ShouldContainSubstring, `id="site-dropdown"`)
				So(body, ShouldContainSubstring, `id="success-pie-chart"`)
				So(body, ShouldContainSubstring, `id="payload-min"`)
				So(body, ShouldContainSubstring, `id="success-payload-scatter-chart"`)
			})

			Convey("And the site picker should accept a search keyword", func() {
				req := httptest.NewRequest("GET", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				body := w.Body.String()
				So(body, ShouldContainSubstring, `id="site-search"`)
				So(body, ShouldContainSubstring, `list="site-options"`)
				So(body, ShouldContainSubstring, `<datalist id="site-options">`)
				So(body, ShouldContainSubstring, `placeholder="Input what site(s) you want to look at"`)

				req = httptest.NewRequest("GET", "/static/app.js", nil)
				w = httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Body.String(), ShouldContainSubstring, "search.addEventListener('input', filterSites)")
			})

			Convey("And it should serve the script", func() {
				req := httptest.NewRequest("GET", "/static/app.js", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/charts/payload-scatter.svg")
			})

			Convey("And it should serve the stylesheet", func() {
				req := httptest.NewRequest("GET", "/static/style.css", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
			})

			Convey("And it should not handle unknown root subpaths", func() {
				req := httptest.NewRequest("GET", "/some-asset", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And it should reject writes to the page", func() {
				req := httptest.NewRequest("POST", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When registering with a custom title", func() {
			So(Register(ctx, mux, WithTitle("Launches <beta>")), ShouldBeNil)
			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the title should be escaped into the page", func() {
				So(w.Body.String(), ShouldContainSubstring, "<h1>Launches &lt;beta&gt;</h1>")
			})
		})
	})
}

func TestSiteErrors(t *testing.T) {
	Convey("Given site error constants", t, func() {
		Convey("Then ErrGenerate should be defined", func() {
			So(ErrGenerate, ShouldNotBeNil)
			So(ErrGenerate.Error(), ShouldEqual, "dashboard page generation failed")
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		Convey("When registering the site handler", func() {
			Convey("Then it should panic", func() {
				So(func() {
					_ = Register(ctx, nil)
				}, ShouldPanic)
			})
		})
	})
}
