package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "hoopsrank")
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("ratings"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"season": "2024-25"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "ratings")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
				So(manager.constLabels["season"], ShouldEqual, "2024-25")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "hoopsrank")
				So(manager.subsystem, ShouldEqual, "")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When engine runs are recorded", func() {
			m.RecordEngineRun("ok", 120)
			m.RecordEngineRun("ok", 80)
			m.RecordEngineRun("error", 3)

			Convey("Then counters are split by result", func() {
				So(testutil.ToFloat64(m.engineRuns.WithLabelValues("ok")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.engineRuns.WithLabelValues("error")), ShouldEqual, 1)
			})
		})

		Convey("When a snapshot size is published", func() {
			m.UpdateSnapshotSize(412, 45, 25)

			Convey("Then gauges reflect the latest values", func() {
				So(testutil.ToFloat64(m.athletesRated), ShouldEqual, 412)
				So(testutil.ToFloat64(m.puntVariants), ShouldEqual, 45)
				So(testutil.ToFloat64(m.scheduleWeeks), ShouldEqual, 25)
			})
		})

		Convey("When the job queue reports depth and rejections", func() {
			m.UpdateQueueDepth(5, 64)
			m.RecordQueueRejected("closed")

			Convey("Then the gauges and counters follow", func() {
				So(testutil.ToFloat64(m.queueDepth), ShouldEqual, 5)
				So(testutil.ToFloat64(m.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(m.queueRejected.WithLabelValues("closed")), ShouldEqual, 1)
			})
		})

		Convey("When draft operations and data quality issues are recorded", func() {
			m.RecordDraftOperation("move", "ok", 2)
			m.RecordDraftOperation("move", "rejected", 1)
			m.RecordDataQuality("orphan_athlete")
			m.RecordDataQuality("orphan_athlete")
			m.RecordFeedRows("current_games", 1000)

			Convey("Then they are counted by label", func() {
				So(testutil.ToFloat64(m.draftOps.WithLabelValues("move", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.draftOps.WithLabelValues("move", "rejected")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.dataQuality.WithLabelValues("orphan_athlete")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.feedRowsLoaded.WithLabelValues("current_games")), ShouldEqual, 1000)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then package helpers do not panic", func() {
			So(func() {
				RecordEngineRun("ok", 10)
				UpdateSnapshotSize(1, 0, 0)
				RecordFeedRows("roster", 3)
				RecordDataQuality("unknown_category")
				RecordDraftOperation("seed", "ok", 1)
				RecordWorkerJob(0.5)
				UpdateQueueDepth(3, 64)
				RecordQueueRejected("full")
			}, ShouldNotPanic)
		})

		Convey("Then the registry exposes the service collectors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					m.RecordWorkerJob(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then every job is counted", func() {
			So(testutil.ToFloat64(m.workerJobs), ShouldEqual, 800)
		})
	})
}
