package service

import "time"

// SetClock replaces the follow-up service clock
func (s *FollowUpService) SetClock(clock func() time.Time) {
	s.now = clock
}
