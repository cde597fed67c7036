package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SchedulerTestSuite struct {
	suite.Suite
	scheduler *Scheduler
}

func (s *SchedulerTestSuite) SetupTest() {
	sched, err := New()
	s.Require().NoError(err)
	s.scheduler = sched
}

func (s *SchedulerTestSuite) TearDownTest() {
	_ = s.scheduler.Stop()
}

func (s *SchedulerTestSuite) TestAddAndRemoveJob() {
	noop := func(context.Context) error { return nil }

	s.Require().NoError(s.scheduler.AddJob("check", "Check", "checks things", "1h", gocron.DurationJob(time.Hour), noop))
	s.True(s.scheduler.HasJob("check"))

	job, ok := s.scheduler.GetJob("check")
	s.Require().True(ok)
	s.Equal("Check", job.Name)
	s.Equal(JobStatusScheduled, job.Status)
	s.True(job.Enabled)
	s.False(job.Singleton)

	err := s.scheduler.AddJob("check", "Check", "again", "1h", gocron.DurationJob(time.Hour), noop)
	s.Error(err)

	s.Require().NoError(s.scheduler.RemoveJob("check"))
	s.False(s.scheduler.HasJob("check"))
	s.Empty(s.scheduler.GetJobs())

	// removing twice is fine
	s.NoError(s.scheduler.RemoveJob("check"))
}

func (s *SchedulerTestSuite) TestSingletonJob() {
	s.Require().NoError(s.scheduler.AddSingletonJob("single", "Single", "", "1h", gocron.DurationJob(time.Hour),
		func(context.Context) error { return nil }))

	job, ok := s.scheduler.GetJob("single")
	s.Require().True(ok)
	s.True(job.Singleton)
}

func (s *SchedulerTestSuite) TestRunJobNow() {
	ran := make(chan struct{}, 1)
	s.Require().NoError(s.scheduler.AddJob("run", "Run", "", "1h", gocron.DurationJob(time.Hour), func(context.Context) error {
		ran <- struct{}{}
		return errors.New("failed on purpose")
	}))
	s.scheduler.Start()

	s.Require().NoError(s.scheduler.RunJobNow("run"))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		s.FailNow("job did not run")
	}

	s.Eventually(func() bool {
		job, _ := s.scheduler.GetJob("run")
		return job.Status == JobStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	job, _ := s.scheduler.GetJob("run")
	s.Equal(1, job.RunCount)
	s.Equal(1, job.ErrorCount)
	s.Equal("failed on purpose", job.LastError)

	nextRun, ok := s.scheduler.NextRun("run")
	s.True(ok)
	s.False(nextRun.IsZero())
}

func (s *SchedulerTestSuite) TestUnknownJob() {
	s.Error(s.scheduler.RunJobNow("missing"))
	s.Error(s.scheduler.EnableJob("missing"))
	s.Error(s.scheduler.DisableJob("missing"))

	_, ok := s.scheduler.GetJob("missing")
	s.False(ok)
	_, ok = s.scheduler.NextRun("missing")
	s.False(ok)
}

func (s *SchedulerTestSuite) TestDisableJob() {
	s.Require().NoError(s.scheduler.AddJob("toggle", "Toggle", "", "1h", gocron.DurationJob(time.Hour),
		func(context.Context) error { return nil }))

	s.Require().NoError(s.scheduler.DisableJob("toggle"))
	job, _ := s.scheduler.GetJob("toggle")
	s.False(job.Enabled)

	s.Require().NoError(s.scheduler.EnableJob("toggle"))
	job, _ = s.scheduler.GetJob("toggle")
	s.True(job.Enabled)
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func TestWithClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 21, 0, 0, 0, time.Local))
	sched, err := New(WithClock(clock))
	require.NoError(t, err)
	defer sched.Stop() //nolint:errcheck

	assert.Equal(t, clock.Now(), sched.Clock().Now())
}
