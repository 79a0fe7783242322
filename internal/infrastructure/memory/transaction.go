package memory

import (
	"context"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
)

// noopTx はインメモリバックエンド用の no-op トランザクション。
// 書き込みはリポジトリ内のロックで直接確定するため、コミットもロールバックも
// 何もしない。
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// TxManager はインメモリバックエンド用のトランザクションマネージャー
type TxManager struct{}

// NewTxManager は新しい TxManager を作成する
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Begin は no-op トランザクションを返す
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return noopTx{}, nil
}

var _ transaction.Manager = (*TxManager)(nil)
