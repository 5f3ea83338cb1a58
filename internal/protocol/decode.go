package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrUnknownType marks a frame whose type tag is not in the catalogue. The
// caller drops the frame and keeps the connection open.
var ErrUnknownType = errors.New("unknown message type")

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one inbound frame into its typed message. A JSON parse
// failure or an unknown tag returns an error; the connection is never torn
// down over a bad frame.
func Decode(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "malformed frame")
	}

	var (
		msg any
		err error
	)
	switch env.Type {
	case TypeExchangesList:
		msg, err = unmarshal[ExchangesList](data)
	case TypeFollowCoins:
		msg, err = unmarshal[FollowCoins](data)
	case TypeValueFormat:
		msg, err = unmarshal[ValueFormat](data)
	case TypePortfolioUpdate:
		msg, err = unmarshal[PortfolioUpdate](data)
	case TypeRemoveHolding:
		msg, err = unmarshal[RemoveHolding](data)
	case TypeOrdersUpdate:
		msg, err = unmarshal[OrdersUpdate](data)
	case TypePriceUpdate:
		msg, err = unmarshal[PriceUpdate](data)
	case TypeLog:
		msg, err = unmarshal[Log](data)
	case TypeReferencePriceInfo:
		msg, err = unmarshal[ReferencePriceInfo](data)
	case TypeNlpTradeConfirm:
		msg, err = unmarshal[NlpTradeConfirm](data)
	case TypeNlpError:
		msg, err = unmarshal[NlpError](data)
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", env.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", env.Type)
	}
	return msg, nil
}

func unmarshal[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
