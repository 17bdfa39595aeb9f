package apdu

import (
	"fmt"
	"strings"

	"github.com/gregLibert/ledger-ssh/pkg/hexutil"
)

// TRANSACTION:
// A Transaction is the atomic unit of communication: one Frame sent by the
// host, followed by one Reply from the device.
//
// TRACE:
// A Trace is the chronological sequence of Transactions of one logical
// operation. A chunked signature is several transactions; only the last reply
// carries the result, while every intermediate reply had to be accepted for
// the next chunk to be sent.

// Transaction represents a completed Frame-Reply pair.
type Transaction struct {
	Command  *Frame
	Response *Reply
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions (Frame-Reply pairs).
type Trace []Transaction

// Last returns the final transaction of the trace.
// Returns nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Describe generates a readable report of the exchanges of the trace.
func (t Trace) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== TRACE (%d transactions) ===", len(t))

	for i, tx := range t {
		fmt.Fprintf(&sb, "\n[%d/%d] >> %s", i+1, len(t), tx.Command)
		if len(tx.Command.Data) > 0 {
			fmt.Fprintf(&sb, "\n      Data: %s", hexutil.Dump(tx.Command.Data, 32))
		}
		if tx.Response == nil {
			sb.WriteString("\n      << (no response)")
			continue
		}
		fmt.Fprintf(&sb, "\n      << %s", tx.Response)
		if len(tx.Response.Data) > 0 {
			fmt.Fprintf(&sb, "\n      Data: %s", hexutil.Dump(tx.Response.Data, 32))
		}
	}

	return sb.String()
}
