package service

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/cache"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
)

// upcomingWindow is how far ahead a task counts as "upcoming"
const upcomingWindow = 7 * 24 * time.Hour

// performerRankSize bounds the top/bottom performer lists
const performerRankSize = 5

// CacheStore is the read/write cache surface used by the dashboard
type CacheStore interface {
	Invalidator
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// Summary is the cached per-supplier or per-project aggregate
type Summary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	TotalTasks      int       `json:"total_tasks"`
	CompletedTasks  int       `json:"completed_tasks"`
	CompletionRatio float64   `json:"completion_ratio"`
	OverdueTasks    int       `json:"overdue_tasks"`
	UpcomingTasks   int       `json:"upcoming_tasks"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// DashboardService computes the derived dashboard view by scanning
// task state across both data models. It is read-only and side-effect
// free apart from populating the cache; results are always
// recomputable and a cached snapshot is at most one TTL stale.
type DashboardService struct {
	queries   TaskQueryStore
	suppliers SupplierStore
	projects  ProjectStore
	cache     CacheStore
	ttl       time.Duration
	logger    *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	queries TaskQueryStore,
	suppliers SupplierStore,
	projects ProjectStore,
	cacheStore CacheStore,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		queries:   queries,
		suppliers: suppliers,
		projects:  projects,
		cache:     cacheStore,
		ttl:       ttl,
		logger:    logger,
	}
}

// ComputeDashboard returns the dashboard snapshot for the given
// reference time, from cache when fresh. Two calls with no intervening
// writes return identical output: ranking ties break by id ascending.
func (s *DashboardService) ComputeDashboard(now time.Time) (*entity.DashboardSnapshot, error) {
	if cached, ok := s.cache.Get(cache.DashboardKey); ok {
		if snapshot, ok := cached.(*entity.DashboardSnapshot); ok {
			return snapshot, nil
		}
	}

	rows, err := s.queries.ListTaskRows(repository.TaskFilter{})
	if err != nil {
		return nil, err
	}

	snapshot := buildSnapshot(rows, now)
	s.cache.Set(cache.DashboardKey, snapshot, s.ttl)

	s.logger.Debug("Dashboard recomputed",
		zap.Int("tasks", snapshot.TotalTasks),
		zap.Int("overdue", snapshot.OverdueTasks))
	return snapshot, nil
}

// SupplierSummary returns the cached aggregate for one supplier
func (s *DashboardService) SupplierSummary(id int64, now time.Time) (*Summary, error) {
	supplier, err := s.suppliers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.NotFound("supplier not found")
	}

	key := cache.SupplierKey(id)
	if cached, ok := s.cache.Get(key); ok {
		if summary, ok := cached.(*Summary); ok {
			return summary, nil
		}
	}

	rows, err := s.queries.ListTaskRows(repository.TaskFilter{SupplierID: &id})
	if err != nil {
		return nil, err
	}

	summary := buildSummary(id, supplier.Name, rows, now)
	s.cache.Set(key, summary, s.ttl)
	return summary, nil
}

// ProjectSummary returns the cached aggregate for one project
func (s *DashboardService) ProjectSummary(id int64, now time.Time) (*Summary, error) {
	project, err := s.projects.GetByID(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project not found")
	}

	key := cache.ProjectKey(id)
	if cached, ok := s.cache.Get(key); ok {
		if summary, ok := cached.(*Summary); ok {
			return summary, nil
		}
	}

	rows, err := s.queries.ListTaskRows(repository.TaskFilter{ProjectID: &id})
	if err != nil {
		return nil, err
	}

	summary := buildSummary(id, project.Name, rows, now)
	s.cache.Set(key, summary, s.ttl)
	return summary, nil
}

type performerAccumulator struct {
	name      string
	total     int
	completed int
}

func buildSnapshot(rows []entity.TaskRow, now time.Time) *entity.DashboardSnapshot {
	snapshot := &entity.DashboardSnapshot{
		GeneratedAt:  now,
		StatusCounts: make(map[string]int),
	}

	supplierPerf := make(map[int64]*performerAccumulator)
	projectPerf := make(map[int64]*performerAccumulator)

	for _, row := range rows {
		snapshot.StatusCounts[row.Status]++
		snapshot.TotalTasks++

		completed := row.Status == string(workflow.StatusCompleted)
		cancelled := row.Status == string(workflow.StatusCancelled)

		if completed {
			snapshot.CompletedTasks++
		}
		if isOverdue(row, now) {
			snapshot.OverdueTasks++
		}
		if isUpcoming(row, now) {
			snapshot.UpcomingTasks++
		}

		// cancelled tasks are no longer owed, so they count in status
		// totals but not in completion ratios
		if !cancelled {
			accumulate(supplierPerf, row.SupplierID, row.SupplierName, completed)
			accumulate(projectPerf, row.ProjectID, row.ProjectName, completed)
		}
	}

	suppliers := summarize(supplierPerf)
	projects := summarize(projectPerf)

	snapshot.SupplierCount = len(suppliers)
	snapshot.ProjectCount = len(projects)
	snapshot.TopSuppliers = rankTop(suppliers, performerRankSize)
	snapshot.BottomSuppliers = rankBottom(suppliers, performerRankSize)
	snapshot.TopProjects = rankTop(projects, performerRankSize)
	snapshot.BottomProjects = rankBottom(projects, performerRankSize)
	return snapshot
}

func buildSummary(id int64, name string, rows []entity.TaskRow, now time.Time) *Summary {
	summary := &Summary{
		ID:          id,
		Name:        name,
		GeneratedAt: now,
	}

	for _, row := range rows {
		if row.Status == string(workflow.StatusCancelled) {
			continue
		}
		summary.TotalTasks++
		if row.Status == string(workflow.StatusCompleted) {
			summary.CompletedTasks++
		}
		if isOverdue(row, now) {
			summary.OverdueTasks++
		}
		if isUpcoming(row, now) {
			summary.UpcomingTasks++
		}
	}

	if summary.TotalTasks > 0 {
		summary.CompletionRatio = float64(summary.CompletedTasks) / float64(summary.TotalTasks)
	}
	return summary
}

func isOverdue(row entity.TaskRow, now time.Time) bool {
	if row.Status == string(workflow.StatusCompleted) || row.Status == string(workflow.StatusCancelled) {
		return false
	}
	return row.EffectiveDueDate.Before(now)
}

func isUpcoming(row entity.TaskRow, now time.Time) bool {
	if row.Status == string(workflow.StatusCompleted) || row.Status == string(workflow.StatusCancelled) {
		return false
	}
	due := row.EffectiveDueDate
	return !due.Before(now) && due.Before(now.Add(upcomingWindow))
}

func accumulate(perf map[int64]*performerAccumulator, id int64, name string, completed bool) {
	acc, ok := perf[id]
	if !ok {
		acc = &performerAccumulator{name: name}
		perf[id] = acc
	}
	acc.total++
	if completed {
		acc.completed++
	}
}

func summarize(perf map[int64]*performerAccumulator) []entity.PerformerSummary {
	summaries := make([]entity.PerformerSummary, 0, len(perf))
	for id, acc := range perf {
		summary := entity.PerformerSummary{
			ID:             id,
			Name:           acc.name,
			TotalTasks:     acc.total,
			CompletedTasks: acc.completed,
		}
		if acc.total > 0 {
			summary.CompletionRatio = float64(acc.completed) / float64(acc.total)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// rankTop orders by completion ratio descending, ties by id ascending
func rankTop(summaries []entity.PerformerSummary, n int) []entity.PerformerSummary {
	ranked := make([]entity.PerformerSummary, len(summaries))
	copy(ranked, summaries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CompletionRatio != ranked[j].CompletionRatio {
			return ranked[i].CompletionRatio > ranked[j].CompletionRatio
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// rankBottom orders by completion ratio ascending, ties by id ascending
func rankBottom(summaries []entity.PerformerSummary, n int) []entity.PerformerSummary {
	ranked := make([]entity.PerformerSummary, len(summaries))
	copy(ranked, summaries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CompletionRatio != ranked[j].CompletionRatio {
			return ranked[i].CompletionRatio < ranked[j].CompletionRatio
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
