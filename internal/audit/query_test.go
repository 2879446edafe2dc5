package audit

import (
	"bytes"
	"context"
	"crypto/rand"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"accessgate/pkg/platform/crypto"
)

type QuerySuite struct {
	suite.Suite
	log *Log
}

func (s *QuerySuite) SetupTest() {
	key := make([]byte, crypto.KeySize)
	_, err := rand.Read(key)
	require.NoError(s.T(), err)

	sealer, err := crypto.New(key)
	require.NoError(s.T(), err)

	path := filepath.Join(s.T().TempDir(), "research.log")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.log, err = New(path, sealer, WithLogger(logger))
	require.NoError(s.T(), err)
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) append(email, report, action string, ts time.Time) {
	s.T().Helper()
	require.NoError(s.T(), s.log.Append(context.Background(), Event{
		Email:      email,
		ReportName: report,
		Action:     action,
		Timestamp:  ts,
	}))
}

func (s *QuerySuite) TestByUserReturnsOnlyThatUserInAppendOrder() {
	now := time.Now()
	s.append("bob@example.com", "ai safety", "start_research", now)
	s.append("alice@example.com", "fusion", "start_research", now)
	s.append("bob@example.com", "ai safety", "download_pdf", now)
	s.append("alice@example.com", "fusion", "download_pdf", now)
	s.append("bob@example.com", "ai safety", "send_email", now)

	events, err := s.log.ByUser(context.Background(), "bob@example.com")
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 3)
	assert.Equal(s.T(), "start_research", events[0].Action)
	assert.Equal(s.T(), "download_pdf", events[1].Action)
	assert.Equal(s.T(), "send_email", events[2].Action)
}

func (s *QuerySuite) TestByUserIsCaseSensitive() {
	s.append("Bob@example.com", "ai safety", "start_research", time.Now())

	events, err := s.log.ByUser(context.Background(), "bob@example.com")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), events)
}

func (s *QuerySuite) TestRecentFiltersByWindow() {
	now := time.Now()
	s.append("alice@example.com", "fusion", "start_research", now.Add(-48*time.Hour))
	s.append("alice@example.com", "fusion", "download_pdf", now.Add(-1*time.Hour))
	s.append("bob@example.com", "ai safety", "start_research", now)

	events, err := s.log.Recent(context.Background(), 24*time.Hour)
	require.NoError(s.T(), err)
	require.Len(s.T(), events, 2)
	assert.Equal(s.T(), "download_pdf", events[0].Action)
	assert.Equal(s.T(), "start_research", events[1].Action)
}

func (s *QuerySuite) TestSearchMatchesEmailAndReportCaseInsensitively() {
	now := time.Now()
	s.append("alice@example.com", "Quantum Computing", "start_research", now)
	s.append("bob@example.com", "fusion energy", "start_research", now)
	s.append("carol@quantum.org", "biology", "start_research", now)

	events, err := s.log.Search(context.Background(), "QUANTUM")
	require.NoError(s.T(), err)
	assert.Len(s.T(), events, 2)
}

func (s *QuerySuite) TestStatisticsOnEmptyJournal() {
	stats, err := s.log.Statistics(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, stats.TotalEvents)
	assert.Equal(s.T(), 0, stats.UniqueUsers)
	assert.Empty(s.T(), stats.MostActiveUser)
	assert.Empty(s.T(), stats.MostCommonAction)
}

func (s *QuerySuite) TestStatistics() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.append("alice@example.com", "fusion", "start_research", base)
	s.append("alice@example.com", "fusion", "download_pdf", base.Add(time.Hour))
	s.append("alice@example.com", "fusion", "start_research", base.Add(2*time.Hour))
	s.append("bob@example.com", "ai safety", "start_research", base.Add(3*time.Hour))

	stats, err := s.log.Statistics(context.Background())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 4, stats.TotalEvents)
	assert.Equal(s.T(), 2, stats.UniqueUsers)
	assert.Equal(s.T(), "alice@example.com", stats.MostActiveUser)
	assert.Equal(s.T(), "start_research", stats.MostCommonAction)
	assert.True(s.T(), stats.Earliest.Equal(base))
	assert.True(s.T(), stats.Latest.Equal(base.Add(3*time.Hour)))
	assert.Equal(s.T(), 3, stats.UserActivity["alice@example.com"])
	assert.Equal(s.T(), 3, stats.ActionCounts["start_research"])
}
