package reconcile

// Kind names the entity class a patch applies to.
type Kind int

const (
	// KindHolding patches one holding card, keyed by market symbol.
	KindHolding Kind = iota
	// KindOrder patches one order card, keyed by order id.
	KindOrder
	// KindLog appends or redraws the log pane.
	KindLog
	// KindTabs redraws the exchange tab bar.
	KindTabs
	// KindAggregate redraws the total-value line of an exchange.
	KindAggregate
	// KindCommand shows or clears the trade confirmation modal.
	KindCommand
	// KindNotice surfaces a transient user-visible message (Key holds it).
	KindNotice
)

// Op is what to do with the patched entity.
type Op int

const (
	// OpPut creates the visual for Key or updates it in place.
	OpPut Op = iota
	// OpRemove tears down the visual for Key.
	OpRemove
	// OpReset rebuilds the whole section for the exchange.
	OpReset
)

// Patch is one minimal view mutation decided by the engine. The render layer
// consumes patches in order; it never rereads derived values back out of
// rendered output.
type Patch struct {
	Kind     Kind
	Op       Op
	Exchange string
	// Key identifies the entity within its kind: market symbol for
	// holdings, order id for orders, message text for notices.
	Key string
}

func put(kind Kind, exchange, key string) Patch {
	return Patch{Kind: kind, Op: OpPut, Exchange: exchange, Key: key}
}

func remove(kind Kind, exchange, key string) Patch {
	return Patch{Kind: kind, Op: OpRemove, Exchange: exchange, Key: key}
}

func reset(kind Kind, exchange string) Patch {
	return Patch{Kind: kind, Op: OpReset, Exchange: exchange}
}
