package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// validStaffID 员工 ID 必须是规范的 UUID
func validStaffID(id string) error {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return ErrInvalidStaffID
	}
	return nil
}

func parseDate(s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return d, nil
}

func optionalClock(s *string) (*model.Clock, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	c, err := model.ParseClock(*s)
	if err != nil {
		return nil, ErrInvalidClock
	}
	return &c, nil
}

func clockString(c *model.Clock) *string {
	if c == nil || *c == "" {
		return nil
	}
	s := c.String()
	return &s
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// toShiftInfo 模型 → 对外的规范形态
func toShiftInfo(s *model.Shift) dto.ShiftInfo {
	info := dto.ShiftInfo{
		Date:      s.Date.String(),
		StartTime: clockString(s.StartTime),
		EndTime:   clockString(s.EndTime),
		IsWorking: s.IsWorking,
		IsAllDay:  s.IsAllDay,
		Note:      s.Note,
	}
	if !s.UpdatedAt.IsZero() {
		info.UpdatedAt = formatTime(s.UpdatedAt)
	}
	return info
}

func toStaffResponse(s *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:               s.StaffID,
		GroupID:          s.GroupID,
		Name:             s.Name,
		Role:             s.Role,
		IsShiftConfirmed: s.IsShiftConfirmed,
		ConfirmedAt:      formatTimePtr(s.ConfirmedAt),
		CreatedAt:        formatTime(s.CreatedAt),
	}
}

func toGroupResponse(g *model.Group) dto.GroupResponse {
	resp := dto.GroupResponse{ID: g.GroupID, Name: g.Name}
	if g.ShiftStartDate != nil {
		resp.ShiftStartDate = g.ShiftStartDate.String()
	}
	if g.ShiftDays != nil {
		resp.ShiftDays = *g.ShiftDays
	}
	return resp
}
