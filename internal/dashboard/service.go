package dashboard

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/presence"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	TeamSummary(ctx context.Context, caller *auth.Identity) Summary
	TeamToday(ctx context.Context, caller *auth.Identity) []MemberStatus
}

type Service struct {
	repo     Repository
	presence presence.Reader
	clock    clock.Clock
}

func NewService(repo Repository, presence presence.Reader, clk clock.Clock) *Service {
	return &Service{repo: repo, presence: presence, clock: clk}
}

type teamDay struct {
	members    []Member
	attendance map[int64]DayAttendance
	onLeave    map[int64]bool
}

func (s *Service) load(ctx context.Context, caller *auth.Identity) (*teamDay, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return &teamDay{}, nil
	}
	members, err := s.repo.TeamMembers(ctx, empID)
	if err != nil || len(members) == 0 {
		return &teamDay{}, err
	}
	today := clock.FormatDate(s.clock.Now())
	attendance, err := s.repo.AttendanceOn(ctx, ids(members), today)
	if err != nil {
		return nil, err
	}
	onLeave, err := s.repo.OnLeave(ctx, ids(members), today)
	if err != nil {
		return nil, err
	}
	return &teamDay{members: members, attendance: attendance, onLeave: onLeave}, nil
}

func (s *Service) TeamSummary(ctx context.Context, caller *auth.Identity) Summary {
	day, err := s.load(ctx, caller)
	if err != nil {
		logger.From(ctx).Error("team summary failed", "user_id", caller.UserID, "error", err)
		return Summary{}
	}
	return Summarize(day.members, day.attendance, day.onLeave)
}

func (s *Service) TeamToday(ctx context.Context, caller *auth.Identity) []MemberStatus {
	day, err := s.load(ctx, caller)
	if err != nil {
		logger.From(ctx).Error("team today details failed", "user_id", caller.UserID, "error", err)
		return []MemberStatus{}
	}

	seen := s.lastSeen(ctx, day.members)
	out := make([]MemberStatus, 0, len(day.members))
	for _, m := range day.members {
		a, hasRecord := day.attendance[m.EmployeeID]
		row := MemberStatus{
			EmployeeID: m.EmployeeID,
			Name:       m.Name,
			Status:     StatusOf(a, hasRecord, day.onLeave[m.EmployeeID]),
			ClockIn:    a.ClockIn,
		}
		if m.UserID != nil {
			if t, ok := seen[*m.UserID]; ok {
				row.LastSeen = &t
			}
		}
		out = append(out, row)
	}
	return out
}

func (s *Service) lastSeen(ctx context.Context, members []Member) map[int64]time.Time {
	if s.presence == nil {
		return nil
	}
	var userIDs []int64
	for _, m := range members {
		if m.UserID != nil {
			userIDs = append(userIDs, *m.UserID)
		}
	}
	if len(userIDs) == 0 {
		return nil
	}
	seen, err := s.presence.LastSeen(ctx, userIDs)
	if err != nil {
		logger.From(ctx).Debug("presence lookup failed", "error", err)
		return nil
	}
	return seen
}
