package reducer

import "github.com/sitproject/sit/internal/types"

// State owns state. Every record re-stamps it from the remembered status.
func State() Reducer {
	return New(NameState, func(acc *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
		switch {
		case rec.Types.Has(types.TypeClosed):
			acc.Status = types.StateClosed
		case rec.Types.Has(types.TypeReopened):
			acc.Status = types.StateOpen
		}
		state.State = acc.status()
		return state, nil
	})
}

// Activity owns last_updated_timestamp.
func Activity() Reducer {
	return New(NameActivity, func(_ *Accumulator, state types.Projection, rec Tagged) (types.Projection, error) {
		timestamp, ok, err := optional(NameActivity, rec, types.FileTimestamp)
		if err != nil || !ok {
			return state, err
		}
		state.LastUpdatedTimestamp = types.StringPtr(timestamp)
		return state, nil
	})
}
