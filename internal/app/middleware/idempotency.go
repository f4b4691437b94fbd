package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // should match the handler result type
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

// replayableKinds are the sentinel errors whose identity must survive an
// idempotent replay, so errors.Is keeps working on the rebuilt error.
var replayableKinds = []error{
	domainbooking.ErrInvalidDateRange,
	domainbooking.ErrPastDate,
	domainbooking.ErrNotFound,
	domainbooking.ErrCapacityExceeded,
	domainbooking.ErrListingUnavailable,
	domainbooking.ErrDateConflict,
	domainbooking.ErrInvalidGuest,
	domainbooking.ErrInvalidGuests,
	domainbooking.ErrInvalidTransition,
	domainbooking.ErrForbidden,
	domainlistings.ErrNotFound,
	domainlistings.ErrForbidden,
	domainlistings.ErrTitleRequired,
	domainlistings.ErrNightlyRate,
	domainlistings.ErrGuestsLimit,
	domainreviews.ErrInvalidRating,
	domainreviews.ErrNotFound,
	domainreviews.ErrNotEligible,
	domainreviews.ErrDuplicateReview,
	domainuser.ErrNotFound,
	uow.ErrStorageUnavailable,
}

func kindOf(err error) string {
	for _, sentinel := range replayableKinds {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

type replayedError struct {
	msg  string
	kind error
}

func (e *replayedError) Error() string { return e.msg }
func (e *replayedError) Unwrap() error { return e.kind }

func restoreError(rec IdempotencyRecord) error {
	if rec.ErrorKind == "" {
		return errors.New(rec.Error)
	}
	for _, sentinel := range replayableKinds {
		if sentinel.Error() != rec.ErrorKind {
			continue
		}
		if rec.Error == rec.ErrorKind {
			return sentinel
		}
		return &replayedError{msg: rec.Error, kind: sentinel}
	}
	return errors.New(rec.Error)
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the recorded outcome for commands resubmitted with the
// same key instead of executing them twice.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" {
					return nil, restoreError(rec)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				record.Error = err.Error()
				record.ErrorKind = kindOf(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
