package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type scheduleServiceImpl struct {
	transactor   database.Transactor
	slotRepo     schedule.SlotRepository
	employeeRepo employee.EmployeeRepository
	clock        clock.Clock
}

func NewScheduleService(
	transactor database.Transactor,
	slotRepo schedule.SlotRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		transactor:   transactor,
		slotRepo:     slotRepo,
		employeeRepo: employeeRepo,
		clock:        clk,
	}
}

// ensureNoOverlap must run with the employee row locked.
func (s *scheduleServiceImpl) ensureNoOverlap(ctx context.Context, employeeID string, candidate schedule.Slot) error {
	existing, err := s.slotRepo.ListByEmployeeAndDate(ctx, employeeID, candidate.Date)
	if err != nil {
		return fmt.Errorf("failed to list employee slots: %w", err)
	}
	if conflict, found := schedule.FindOverlap(candidate, existing); found {
		slog.Debug("slot overlap rejected", "employee_id", employeeID, "slot_id", candidate.ID, "conflicting_slot_id", conflict.ID)
		return schedule.ErrOverlappingSlot
	}
	return nil
}

func (s *scheduleServiceImpl) lockEmployee(ctx context.Context, employeeID string) error {
	if _, err := s.employeeRepo.LockByID(ctx, employeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}
	return nil
}

// CreateSlot implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateSlot(ctx context.Context, req schedule.CreateSlotRequest) (schedule.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.SlotResponse{}, err
	}

	date, start, end, err := req.Bounds(s.clock.Location())
	if err != nil {
		return schedule.SlotResponse{}, err
	}

	slot := schedule.Slot{
		Date:      date,
		Start:     start,
		End:       end,
		CreatedBy: req.CreatedBy,
	}

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if req.EmployeeID != nil {
			if err := s.lockEmployee(txCtx, *req.EmployeeID); err != nil {
				return err
			}
			if err := s.ensureNoOverlap(txCtx, *req.EmployeeID, slot); err != nil {
				return err
			}
			slot.AssignedEmployeeID = req.EmployeeID
		}

		created, err := s.slotRepo.Create(txCtx, slot)
		if err != nil {
			return fmt.Errorf("failed to create slot: %w", err)
		}
		slot = created
		return nil
	})
	if err != nil {
		return schedule.SlotResponse{}, err
	}

	return schedule.NewSlotResponse(slot), nil
}

// CreateRecurringSlots implements schedule.ScheduleService.
func (s *scheduleServiceImpl) CreateRecurringSlots(ctx context.Context, req schedule.CreateRecurringSlotsRequest) ([]schedule.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	from, err := time.ParseInLocation("2006-01-02", req.From, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse from date: %w", err)
	}

	dates, err := schedule.ExpandRecurrence(req.Rule, from)
	if err != nil {
		return nil, err
	}

	created := make([]schedule.Slot, 0, len(dates))
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if req.EmployeeID != nil {
			if err := s.lockEmployee(txCtx, *req.EmployeeID); err != nil {
				return err
			}
		}

		for _, day := range dates {
			date, start, end, err := schedule.SlotBounds(day.Format("2006-01-02"), req.Start, req.End, loc)
			if err != nil {
				return err
			}
			slot := schedule.Slot{
				Date:      date,
				Start:     start,
				End:       end,
				CreatedBy: req.CreatedBy,
			}
			if req.EmployeeID != nil {
				if err := s.ensureNoOverlap(txCtx, *req.EmployeeID, slot); err != nil {
					return fmt.Errorf("%s: %w", date.Format("2006-01-02"), err)
				}
				slot.AssignedEmployeeID = req.EmployeeID
			}

			saved, err := s.slotRepo.Create(txCtx, slot)
			if err != nil {
				return fmt.Errorf("failed to create slot: %w", err)
			}
			created = append(created, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recurring slots created", "count", len(created), "rule", req.Rule, "created_by", req.CreatedBy)
	return schedule.NewSlotResponses(created), nil
}

// GetSlot implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetSlot(ctx context.Context, id string) (schedule.SlotResponse, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, schedule.ErrSlotNotFound) {
			return schedule.SlotResponse{}, err
		}
		return schedule.SlotResponse{}, fmt.Errorf("failed to get slot: %w", err)
	}
	return schedule.NewSlotResponse(slot), nil
}

// DeleteSlot implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeleteSlot(ctx context.Context, id string) error {
	if err := s.slotRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, schedule.ErrSlotNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// Assign implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Assign(ctx context.Context, slotID string, req schedule.AssignRequest) (schedule.SlotResponse, error) {
	return s.assign(ctx, slotID, req, false)
}

// Reassign implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Reassign(ctx context.Context, slotID string, req schedule.AssignRequest) (schedule.SlotResponse, error) {
	return s.assign(ctx, slotID, req, true)
}

func (s *scheduleServiceImpl) assign(ctx context.Context, slotID string, req schedule.AssignRequest, replace bool) (schedule.SlotResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.SlotResponse{}, err
	}

	var slot schedule.Slot
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, err := s.slotRepo.LockByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, schedule.ErrSlotNotFound) {
				return err
			}
			return fmt.Errorf("failed to lock slot: %w", err)
		}
		slot = locked

		if slot.IsAssignedTo(req.EmployeeID) {
			return schedule.ErrAlreadyAssigned
		}
		if slot.IsAssigned() && !replace {
			return schedule.ErrSlotTaken
		}

		if err := s.lockEmployee(txCtx, req.EmployeeID); err != nil {
			return err
		}
		if err := s.ensureNoOverlap(txCtx, req.EmployeeID, slot); err != nil {
			return err
		}

		if err := s.slotRepo.UpdateAssignment(txCtx, slot.ID, &req.EmployeeID); err != nil {
			return fmt.Errorf("failed to update slot assignment: %w", err)
		}
		employeeID := req.EmployeeID
		slot.AssignedEmployeeID = &employeeID
		slot.AssignedEmployeeName = nil
		return nil
	})
	if err != nil {
		return schedule.SlotResponse{}, err
	}

	return schedule.NewSlotResponse(slot), nil
}

// FindSlotsInMonth implements schedule.ScheduleService.
func (s *scheduleServiceImpl) FindSlotsInMonth(ctx context.Context, filter schedule.MonthFilter) ([]schedule.SlotResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListByMonth(ctx, filter.Year, time.Month(filter.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return schedule.NewSlotResponses(slots), nil
}

// FindTodaySlotFor implements schedule.ScheduleService.
func (s *scheduleServiceImpl) FindTodaySlotFor(ctx context.Context, employeeID string) (schedule.Slot, error) {
	slots, err := s.slotRepo.ListByEmployeeAndDate(ctx, employeeID, clock.Today(s.clock))
	if err != nil {
		return schedule.Slot{}, fmt.Errorf("failed to list today's slots: %w", err)
	}
	slot, ok := schedule.Earliest(slots)
	if !ok {
		return schedule.Slot{}, schedule.ErrNoScheduleToday
	}
	return slot, nil
}
