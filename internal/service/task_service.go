package service

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/apperr"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/entity"
	"github.com/MontiPy/pic-tracking-sub000/internal/domain/workflow"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
)

// InstancePatch is a partial update to one or more task instances.
// A nil field is left untouched; ClearDueDate removes the override and
// re-subscribes the instance to template date propagation.
type InstancePatch struct {
	Status       *workflow.Status
	DueDate      *time.Time
	ClearDueDate bool
	Notes        *string
	IsApplied    *bool
}

// IsEmpty reports whether the patch changes nothing
func (p InstancePatch) IsEmpty() bool {
	return p.Status == nil && p.DueDate == nil && !p.ClearDueDate &&
		p.Notes == nil && p.IsApplied == nil
}

// BulkUpdateResult reports the outcome of a bulk update
type BulkUpdateResult struct {
	Instances   []*entity.TaskInstance `json:"instances"`
	SupplierIDs []int64                `json:"supplier_ids"`
	ProjectIDs  []int64                `json:"project_ids"`
}

// TaskService handles task instance reads and writes: filtered
// listings, single-instance updates and the bulk operator. All writes
// are all-or-nothing within one transaction.
type TaskService struct {
	instances InstanceStore
	queries   TaskQueryStore
	tx        TxRunner
	cache     Invalidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(
	instances InstanceStore,
	queries TaskQueryStore,
	tx TxRunner,
	cache Invalidator,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		instances: instances,
		queries:   queries,
		tx:        tx,
		cache:     cache,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListTasks returns applied tasks matching the filter across both data
// models, routed by each project's schema version.
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]entity.TaskRow, error) {
	if filter.OverdueOnly && filter.Now.IsZero() {
		filter.Now = s.now()
	}
	return s.queries.ListTaskRows(filter)
}

// GetInstance retrieves one task instance with its effective due date
func (s *TaskService) GetInstance(id int64) (*entity.TaskInstance, error) {
	instance, err := s.instances.GetByID(id)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, apperr.NotFound("task instance not found")
	}
	return instance, nil
}

// UpdateInstance applies a patch to exactly one instance, guarded by
// the optimistic-lock timestamp.
func (s *TaskService) UpdateInstance(id int64, patch InstancePatch, prevUpdatedAt time.Time) (*entity.TaskInstance, error) {
	if patch.IsEmpty() {
		return nil, apperr.Validation("patch", "patch must not be empty")
	}
	if prevUpdatedAt.IsZero() {
		return nil, apperr.Validation("prev_updated_at", "prev_updated_at is required")
	}

	var updated *entity.TaskInstance
	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		instances, err := s.instances.GetByIDs(tx, []int64{id})
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			return apperr.NotFound("task instance not found")
		}

		instance := instances[0]
		if !instance.UpdatedAt.Equal(prevUpdatedAt) {
			return apperr.Conflict("prev_updated_at", "task instance was modified by another request")
		}

		if err := s.applyPatch(instance, patch, s.now()); err != nil {
			return err
		}
		if err := s.instances.Update(tx, instance); err != nil {
			return err
		}

		updated = instance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate([]int64{updated.SupplierID}, []int64{updated.ProjectID})
	return updated, nil
}

// SetInstanceDueDate sets or clears an instance's due-date override.
// Setting a date detaches the instance from template propagation;
// clearing it (nil) re-subscribes it.
func (s *TaskService) SetInstanceDueDate(id int64, dueDate *time.Time, prevUpdatedAt time.Time) (*entity.TaskInstance, error) {
	patch := InstancePatch{DueDate: dueDate, ClearDueDate: dueDate == nil}
	return s.UpdateInstance(id, patch, prevUpdatedAt)
}

// BulkUpdate applies one patch to every listed instance in a single
// transaction. Any constraint violation rolls back the whole batch.
// prevUpdatedAt entries, when supplied, are checked per instance inside
// the transaction.
func (s *TaskService) BulkUpdate(ids []int64, patch InstancePatch, prevUpdatedAt map[int64]time.Time) (*BulkUpdateResult, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("instance_ids", "instance_ids must not be empty")
	}
	if patch.IsEmpty() {
		return nil, apperr.Validation("patch", "patch must not be empty")
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, apperr.Validation("instance_ids", fmt.Sprintf("duplicate instance id %d", id))
		}
		seen[id] = true
	}

	// one timestamp for the whole batch so completion stamps agree
	now := s.now()

	var result BulkUpdateResult
	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		instances, err := s.instances.GetByIDs(tx, ids)
		if err != nil {
			return err
		}
		if len(instances) != len(ids) {
			found := make(map[int64]bool, len(instances))
			for _, instance := range instances {
				found[instance.ID] = true
			}
			for _, id := range ids {
				if !found[id] {
					return apperr.NotFound(fmt.Sprintf("task instance %d not found", id))
				}
			}
		}

		supplierSet := make(map[int64]bool)
		projectSet := make(map[int64]bool)

		for _, instance := range instances {
			if prev, ok := prevUpdatedAt[instance.ID]; ok && !instance.UpdatedAt.Equal(prev) {
				return apperr.Conflict("prev_updated_at",
					fmt.Sprintf("task instance %d was modified by another request", instance.ID))
			}

			if err := s.applyPatch(instance, patch, now); err != nil {
				return err
			}
			if err := s.instances.Update(tx, instance); err != nil {
				return err
			}

			supplierSet[instance.SupplierID] = true
			projectSet[instance.ProjectID] = true
		}

		result.Instances = instances
		result.SupplierIDs = sortedKeys(supplierSet)
		result.ProjectIDs = sortedKeys(projectSet)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(result.SupplierIDs, result.ProjectIDs)

	s.logger.Info("Bulk update applied",
		zap.Int("instances", len(result.Instances)),
		zap.Int("suppliers", len(result.SupplierIDs)),
		zap.Int("projects", len(result.ProjectIDs)))
	return &result, nil
}

// applyPatch mutates an instance per the patch, enforcing workflow
// transitions. Completing stamps completed_at only when not already
// set; no other transition writes implicit fields.
func (s *TaskService) applyPatch(instance *entity.TaskInstance, patch InstancePatch, now time.Time) error {
	if patch.Status != nil {
		next := *patch.Status
		if !next.IsValid() {
			return apperr.Validation("status", fmt.Sprintf("unknown status %q", next))
		}
		if err := workflow.Transition(instance.Status, next); err != nil {
			return apperr.Validation("status",
				fmt.Sprintf("cannot transition task %d from %s to %s", instance.ID, instance.Status, next))
		}
		instance.Status = next
		if next == workflow.StatusCompleted && instance.CompletedAt == nil {
			completedAt := now
			instance.CompletedAt = &completedAt
		}
	}

	if patch.ClearDueDate {
		instance.ActualDueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		instance.ActualDueDate = &due
	}

	if patch.Notes != nil {
		instance.Notes = *patch.Notes
	}
	if patch.IsApplied != nil {
		instance.IsApplied = *patch.IsApplied
	}
	return nil
}

// invalidate drops derived caches after commit, never before
func (s *TaskService) invalidate(supplierIDs, projectIDs []int64) {
	for _, id := range supplierIDs {
		s.cache.InvalidateSupplier(id)
	}
	for _, id := range projectIDs {
		s.cache.InvalidateProject(id)
	}
	s.cache.InvalidateDashboard()
}

func sortedKeys(set map[int64]bool) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
