package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"kot-system/internal/logger"
)

// SeatHold places short-lived holds on seats while a cashier is building an
// order, so two terminals cannot put the same seat on two tickets. Holds
// expire on their own; a submitted order releases them explicitly.
type SeatHold struct {
	Client *redis.Client
	Logger *logger.Logger
	TTL    time.Duration
}

func NewSeatHold(client *redis.Client, log *logger.Logger, ttl time.Duration) *SeatHold {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SeatHold{Client: client, Logger: log, TTL: ttl}
}

func holdKey(tableNumber int, seatNumber string) string {
	return fmt.Sprintf("seat_hold:%d:%s", tableNumber, seatNumber)
}

// HoldSeat places a hold owned by sessionID. Returns false if another
// session already holds the seat.
func (s *SeatHold) HoldSeat(tableNumber int, seatNumber, sessionID string) (bool, error) {
	ok, err := s.Client.SetNX(context.Background(), holdKey(tableNumber, seatNumber), sessionID, s.TTL).Result()
	if err != nil {
		return false, err
	}
	if ok {
		s.Logger.Debug("REDIS", fmt.Sprintf("held seat %s on table %d for %s", seatNumber, tableNumber, sessionID))
	}
	return ok, err
}

// HoldSeats holds all seats or none. On any conflict the already-placed
// holds are released before returning.
func (s *SeatHold) HoldSeats(tableNumber int, seatNumbers []string, sessionID string) (bool, error) {
	held := []string{}
	for _, seat := range seatNumbers {
		ok, err := s.HoldSeat(tableNumber, seat, sessionID)
		if err != nil || !ok {
			for _, h := range held {
				_ = s.releaseSeat(tableNumber, h, sessionID)
			}
			return false, err
		}
		held = append(held, seat)
	}
	return true, nil
}

func (s *SeatHold) releaseSeat(tableNumber int, seatNumber, sessionID string) error {
	ctx := context.Background()
	key := holdKey(tableNumber, seatNumber)
	val, err := s.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	// Only the owning session may release, unless called without one.
	if sessionID == "" || val == sessionID {
		_, err = s.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// ReleaseSeats drops the holds regardless of owner. The order service calls
// this after the seats are persisted as occupied.
func (s *SeatHold) ReleaseSeats(tableNumber int, seatNumbers []string) error {
	var firstErr error
	for _, seat := range seatNumbers {
		if err := s.releaseSeat(tableNumber, seat, ""); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HeldSeats returns which of the given seats currently carry a hold.
func (s *SeatHold) HeldSeats(tableNumber int, seatNumbers []string) ([]string, error) {
	held := []string{}
	for _, seat := range seatNumbers {
		_, err := s.Client.Get(context.Background(), holdKey(tableNumber, seat)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		held = append(held, seat)
	}
	return held, nil
}
