package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/launchdash/internal/config"
	"github.com/okian/launchdash/pkg/logger"
	"github.com/okian/launchdash/pkg/metrics"
)

const launchesCSV = `Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
1,siteA,1,500.0,F9 v1.0  B0003,v1.0
2,siteA,0,1500.0,F9 v1.1,v1.1
3,siteB,1,800.0,F9 FT B1031.1,FT
4,siteB,0,6000.0,F9 B5 B1048.1,B5
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launches.csv")
	if err := os.WriteFile(path, []byte(launchesCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetFlags restores every flag to its default between runs of the shared
// command tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	summaryCmd.Flags().VisitAll(reset)
}

func execute(args ...string) (string, error) {
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	path := writeCSV(t)

	Convey("Given a launch records file", t, func() {
		Convey("When summarizing all sites", func() {
			out, err := execute("summary", "--data", path)

			Convey("Then it prints every table", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Dataset")
				So(out, ShouldContainSubstring, "Success Count for all launch sites")
				// Table headers are upper-cased by the light style.
				So(strings.ToUpper(out), ShouldContainSubstring, "LAUNCH SITE")
				So(strings.ToUpper(out), ShouldContainSubstring, "BOOSTER CATEGORY")
				So(out, ShouldContainSubstring, "siteA")
				So(out, ShouldContainSubstring, "siteB")
				So(out, ShouldContainSubstring, "[500, 6000] kg")
			})
		})

		Convey("When summarizing one site over a payload range", func() {
			out, err := execute("summary", "--data", path, "--site", "siteA", "--min", "0", "--max", "2000", "--format", "csv")

			Convey("Then it prints the outcome split and the filtered points", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Outcome,Count")
				So(out, ShouldContainSubstring, "Failure,1")
				So(out, ShouldContainSubstring, "Success,1")
				So(out, ShouldContainSubstring, "v1.0,1,0,1")
				So(out, ShouldContainSubstring, "v1.1,0,1,1")
				So(out, ShouldNotContainSubstring, "\nFT,")
			})
		})

		Convey("When the range is inverted", func() {
			out, err := execute("summary", "--data", path, "--site", "siteA", "--min", "5000", "--max", "4000", "--format", "csv")

			Convey("Then no points are listed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Booster Category,Success,Failure,Points")
				So(out, ShouldNotContainSubstring, "\nv1.0,")
				So(out, ShouldNotContainSubstring, "\nv1.1,")
			})
		})

		Convey("When rendering markdown", func() {
			out, err := execute("summary", "--data", path, "--format", "markdown")

			Convey("Then tables use pipes", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "| Launch Site")
			})
		})

		Convey("When the format is unknown", func() {
			_, err := execute("summary", "--data", path, "--format", "xml")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown format")
			})
		})

		Convey("When the data file is missing", func() {
			_, err := execute("summary", "--data", filepath.Join(t.TempDir(), "missing.csv"))

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoadConfigOverrides(t *testing.T) {
	Convey("Given global flags", t, func() {
		resetFlags()
		Reset(resetFlags)

		Convey("When --data is set", func() {
			So(rootCmd.PersistentFlags().Set("data", "other.csv"), ShouldBeNil)
			cfg, err := loadConfig(context.Background())

			Convey("Then it replaces data_path", func() {
				So(err, ShouldBeNil)
				So(cfg.DataPath, ShouldEqual, "other.csv")
			})
		})

		Convey("When --config names a YAML file", func() {
			path := filepath.Join(t.TempDir(), "launchdash.yaml")
			So(os.WriteFile(path, []byte("addr: \":7070\"\ntitle: Launches\n"), 0o600), ShouldBeNil)
			t.Setenv(config.EnvConfigFile, "")
			So(rootCmd.PersistentFlags().Set("config", path), ShouldBeNil)
			cfg, err := loadConfig(context.Background())

			Convey("Then the file is layered over the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.Title, ShouldEqual, "Launches")
				So(cfg.DataPath, ShouldEqual, config.New().DataPath)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}
	path := writeCSV(t)

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DataPath = path
		cfg.Title = "Test Launches"

		svc := newService(cfg, logger.Get())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		h, err := newHandler(ctx, cfg, svc)
		So(err, ShouldBeNil)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		Convey("Then every surface is routed", func() {
			for _, target := range []string{
				"/",
				"/static/app.js",
				"/api/sites",
				"/api/summary",
				"/api/success-pie?site=siteA",
				"/api/payload-scatter?site=ALL&min=0&max=1000",
				"/charts/success-pie.svg",
				"/charts/payload-scatter.svg?min=0&max=10000",
				"/healthz",
				"/stats",
				"/api-docs",
				"/openapi.yaml",
			} {
				So(get(target).Code, ShouldEqual, http.StatusOK)
			}
		})

		Convey("Then the configured title reaches the page", func() {
			So(get("/").Body.String(), ShouldContainSubstring, "Test Launches")
		})

		Convey("Then every response carries a request id", func() {
			id := get("/api/sites").Header().Get("X-Request-ID")
			_, err := uuid.Parse(id)
			So(err, ShouldBeNil)
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}
	path := writeCSV(t)

	Convey("Given a config with custom metrics settings", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DataPath = path
		cfg.MetricsNamespace = "spacex"
		cfg.MetricsRefreshSeconds = 3
		Reset(func() { metrics.Configure() })

		Convey("When the metrics are configured before the routes are built", func() {
			metrics.Configure(metricsOptions(cfg)...)

			svc := newService(cfg, logger.Get())
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			h, err := newHandler(ctx, cfg, svc)
			So(err, ShouldBeNil)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then /healthz should export the configured namespace", func() {
				So(metrics.RefreshInterval(), ShouldEqual, 3*time.Second)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "spacex_dashboard_dataset_records")
				So(w.Body.String(), ShouldNotContainSubstring, "launchdash_dashboard_")
			})
		})
	})
}
