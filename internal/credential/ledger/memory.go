package ledger

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// Standard asset limits.
const (
	MaxAssetNameBytes = 32
	MaxUnitNameBytes  = 8
	MaxAssetURLBytes  = 96
)

// Op names a ledger operation for failure injection.
type Op string

const (
	OpCreate   Op = "create"
	OpTransfer Op = "transfer"
	OpClawback Op = "clawback"
	OpFreeze   Op = "freeze"
)

type holding struct {
	amount uint64
	frozen bool
}

type asset struct {
	params   AssetParams
	holdings map[domain.Address]*holding
}

// InMemoryLedger is an in-process ledger with standard asset semantics.
// The signer is the service account that submits every sub-transaction.
type InMemoryLedger struct {
	mu       sync.Mutex
	signer   domain.Address
	nextID   domain.CredentialID
	assets   map[domain.CredentialID]*asset
	failures map[Op]error
}

// NewInMemory starts asset numbering at firstID (1 when zero).
func NewInMemory(signer domain.Address, firstID domain.CredentialID) *InMemoryLedger {
	if firstID == 0 {
		firstID = 1
	}
	return &InMemoryLedger{
		signer:   signer,
		nextID:   firstID,
		assets:   make(map[domain.CredentialID]*asset),
		failures: make(map[Op]error),
	}
}

// IDSource reports the highest credential id already recorded elsewhere.
type IDSource interface {
	MaxID(ctx context.Context) (domain.CredentialID, error)
}

// ResumeInMemory builds an in-memory ledger whose numbering continues past every
// id known to src, so a persistent registry never sees a reused id. Assets created
// before the restart are not recreated; calls naming them are rejected.
func ResumeInMemory(ctx context.Context, signer domain.Address, firstID domain.CredentialID, src IDSource) (*InMemoryLedger, error) {
	top, err := src.MaxID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read highest registered id: %w", err)
	}
	if top >= firstID {
		firstID = top + 1
	}
	return NewInMemory(signer, firstID), nil
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel.ErrRejected, fmt.Sprintf(format, args...))
}

// FailNext makes the next call of op return err without any effect.
func (l *InMemoryLedger) FailNext(op Op, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[op] = err
}

func (l *InMemoryLedger) takeFailure(op Op) error {
	err, ok := l.failures[op]
	if !ok {
		return nil
	}
	delete(l.failures, op)
	return err
}

func (l *InMemoryLedger) CreateUniqueAsset(ctx context.Context, cfg AssetConfig) (domain.CredentialID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.takeFailure(OpCreate); err != nil {
		return 0, err
	}
	switch {
	case len(cfg.Name) > MaxAssetNameBytes:
		return 0, rejected("asset name exceeds %d bytes", MaxAssetNameBytes)
	case len(cfg.UnitName) > MaxUnitNameBytes:
		return 0, rejected("unit name exceeds %d bytes", MaxUnitNameBytes)
	case len(cfg.URL) > MaxAssetURLBytes:
		return 0, rejected("url exceeds %d bytes", MaxAssetURLBytes)
	case cfg.Total == 0:
		return 0, rejected("total must be positive")
	}

	id := l.nextID
	l.nextID++
	l.assets[id] = &asset{
		params: AssetParams{AssetConfig: cfg, ID: id, Creator: l.signer},
		holdings: map[domain.Address]*holding{
			l.signer: {amount: cfg.Total, frozen: cfg.DefaultFrozen},
		},
	}
	return id, nil
}

// OptIn is the holder's own action allowing it to receive id.
func (l *InMemoryLedger) OptIn(ctx context.Context, id domain.CredentialID, account domain.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[id]
	if !ok {
		return rejected("asset %s does not exist", id)
	}
	if _, ok := a.holdings[account]; !ok {
		a.holdings[account] = &holding{frozen: a.params.DefaultFrozen}
	}
	return nil
}

func (l *InMemoryLedger) Transfer(ctx context.Context, id domain.CredentialID, from, to domain.Address, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	clawback := from != l.signer
	op := OpTransfer
	if clawback {
		op = OpClawback
	}
	if err := l.takeFailure(op); err != nil {
		return err
	}

	a, ok := l.assets[id]
	if !ok {
		return rejected("asset %s does not exist", id)
	}
	if clawback && a.params.Clawback != l.signer {
		return rejected("signer is not the clawback authority of asset %s", id)
	}
	src, ok := a.holdings[from]
	if !ok {
		return rejected("%s is not opted in to asset %s", from, id)
	}
	dst, ok := a.holdings[to]
	if !ok {
		return rejected("%s is not opted in to asset %s", to, id)
	}
	if !clawback && src.frozen {
		return rejected("holding of %s in asset %s is frozen", from, id)
	}
	// Claw-back bypasses freeze on both sides.
	if !clawback && dst.frozen {
		return rejected("holding of %s in asset %s is frozen", to, id)
	}
	if src.amount < amount {
		return rejected("insufficient balance of asset %s in %s", id, from)
	}
	src.amount -= amount
	dst.amount += amount
	return nil
}

func (l *InMemoryLedger) Freeze(ctx context.Context, id domain.CredentialID, account domain.Address, frozen bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.takeFailure(OpFreeze); err != nil {
		return err
	}
	a, ok := l.assets[id]
	if !ok {
		return rejected("asset %s does not exist", id)
	}
	if a.params.Freeze != l.signer {
		return rejected("signer is not the freeze authority of asset %s", id)
	}
	h, ok := a.holdings[account]
	if !ok {
		return rejected("%s is not opted in to asset %s", account, id)
	}
	h.frozen = frozen
	return nil
}

func (l *InMemoryLedger) AssetInfo(ctx context.Context, id domain.CredentialID) (*AssetParams, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.assets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	params := a.params
	return &params, nil
}

// AccountHoldings lists every asset account is opted in to, ordered by id.
func (l *InMemoryLedger) AccountHoldings(ctx context.Context, account domain.Address) ([]Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Holding
	for id, a := range l.assets {
		if h, ok := a.holdings[account]; ok {
			out = append(out, Holding{AssetID: id, Amount: h.amount, Frozen: h.frozen})
		}
	}
	slices.SortFunc(out, func(a, b Holding) int { return cmp.Compare(a.AssetID, b.AssetID) })
	return out, nil
}

var (
	_ Ledger = (*InMemoryLedger)(nil)
	_ Reader = (*InMemoryLedger)(nil)
)
