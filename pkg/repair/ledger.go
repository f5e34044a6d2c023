package repair

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Ledger columns: ID, type, source, message, action, sheet, followup.
const (
	ledgerColID      = 1
	ledgerColMessage = 4
	ledgerCols       = 7
)

var assumeIDRe = regexp.MustCompile(`^ASSUME-(\d+)$`)

type ledgerRow struct {
	sheet, source, message string
}

// ledger is the assumptions sheet: the set of messages already recorded
// plus the rows queued by this pass.
type ledger struct {
	sheet    string
	messages map[string]struct{}
	next     int
	pending  []ledgerRow
}

func readLedger(b *tabular.Book, name string) (*ledger, error) {
	l := &ledger{sheet: name, messages: make(map[string]struct{}), next: 1}
	t := b.Table(name)
	if t == nil {
		return nil, errors.NewRepairError(name, 0, 0, "assumptions ledger sheet not found")
	}
	for row := 1; row <= min(t.MaxRow(), constants.LedgerWindow); row++ {
		if msg := t.Cell(row, ledgerColMessage); msg != "" {
			l.messages[msg] = struct{}{}
		}
		if m := assumeIDRe.FindStringSubmatch(t.Cell(row, ledgerColID)); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= l.next {
				l.next = n + 1
			}
		}
	}
	return l, nil
}

func (l *ledger) has(message string) bool {
	_, ok := l.messages[message]
	return ok
}

func (l *ledger) add(sheet, source, message string) {
	l.messages[message] = struct{}{}
	l.pending = append(l.pending, ledgerRow{sheet: sheet, source: source, message: message})
}

// flush appends the queued rows below the last used ledger row.
func (l *ledger) flush(b *tabular.Book) error {
	if len(l.pending) == 0 {
		return nil
	}
	t := b.Table(l.sheet)
	row := tabular.LastUsedRow(t, ledgerCols, constants.LedgerWindow) + 1
	if last := row + len(l.pending) - 1; last > constants.LedgerWindow {
		return errors.NewRepairError(l.sheet, last, ledgerColMessage,
			fmt.Sprintf("ledger would grow past row %d where entries are no longer read", constants.LedgerWindow))
	}
	for _, p := range l.pending {
		t.SetRow(row,
			fmt.Sprintf("ASSUME-%03d", l.next),
			"자동 보완(TBD)",
			p.source,
			p.message,
			"근거 확보 전까지 TBD 유지",
			p.sheet,
			"스펙 원본(요구사항/API/DB) 보완 필요",
		)
		row++
		l.next++
	}
	l.pending = nil
	return nil
}
