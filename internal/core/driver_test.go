package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
)

// stubProcessor 按项目名返回预设错误
type stubProcessor struct {
	failures map[string]error
	seen     []string
}

func (s *stubProcessor) ProcessProject(ctx context.Context, desc models.ProjectDescriptor) (*models.ProjectResult, error) {
	s.seen = append(s.seen, desc.Name)
	if err := s.failures[desc.Name]; err != nil {
		return nil, err
	}
	return &models.ProjectResult{
		Project: desc,
		Stats:   models.TaskStats{Buildings: 1, Rooms: 2, NetworkFetches: 4},
	}, nil
}

func testProjects(names ...string) []models.ProjectDescriptor {
	projects := make([]models.ProjectDescriptor, 0, len(names))
	for _, name := range names {
		projects = append(projects, models.ProjectDescriptor{Name: name, URL: "http://example.com/" + name})
	}
	return projects
}

func TestCrawlDriver_StopsOnFirstError(t *testing.T) {
	boom := &models.ContentLayoutError{Landmark: "房屋资料", Reason: "未找到"}
	proc := &stubProcessor{failures: map[string]error{"B": boom}}
	driver := NewCrawlDriver(proc, 0, false)

	summary, err := driver.Run(context.Background(), testProjects("A", "B", "C"))

	var layout *models.ContentLayoutError
	require.True(t, errors.As(err, &layout))
	require.Equal(t, []string{"A", "B"}, proc.seen, "失败后不应继续处理")
	require.Equal(t, 1, summary.SuccessCount)
	require.Equal(t, 1, summary.FailCount)
}

func TestCrawlDriver_ContinueOnError(t *testing.T) {
	errA := errors.New("项目A出错")
	errC := errors.New("项目C出错")
	proc := &stubProcessor{failures: map[string]error{"A": errA, "C": errC}}
	driver := NewCrawlDriver(proc, 0, true)

	summary, err := driver.Run(context.Background(), testProjects("A", "B", "C"))

	require.Error(t, err)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errC)
	require.Equal(t, []string{"A", "B", "C"}, proc.seen)
	require.Equal(t, 1, summary.SuccessCount)
	require.Equal(t, 2, summary.FailCount)
	require.Equal(t, 2, summary.Stats.Rooms)
}

func TestCrawlDriver_AllSucceed(t *testing.T) {
	proc := &stubProcessor{}
	driver := NewCrawlDriver(proc, time.Millisecond, false)

	summary, err := driver.Run(context.Background(), testProjects("A", "B"))
	require.NoError(t, err)
	require.Equal(t, 2, summary.SuccessCount)
	require.Equal(t, models.TaskStats{Buildings: 2, Rooms: 4, NetworkFetches: 8}, summary.Stats)
}

func TestCrawlDriver_DelayHonorsCancel(t *testing.T) {
	proc := &stubProcessor{}
	driver := NewCrawlDriver(proc, time.Hour, true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := driver.Run(ctx, testProjects("A", "B"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, []string{"A"}, proc.seen)
}
