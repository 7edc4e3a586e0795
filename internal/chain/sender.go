package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxSender signs and broadcasts state-changing contract calls, and waits for
// their receipts. It is the write half of the chain surface the orchestrator
// consumes.
type TxSender struct {
	client      *EVMClient
	signer      *wallet.Signer
	chainID     *big.Int
	waitTimeout time.Duration
}

// NewTxSender creates a TxSender. waitTimeout bounds AwaitConfirmation; zero
// selects the default of 3 minutes.
func NewTxSender(client *EVMClient, signer *wallet.Signer, chainID int64, waitTimeout time.Duration) *TxSender {
	if waitTimeout <= 0 {
		waitTimeout = 3 * time.Minute
	}
	return &TxSender{
		client:      client,
		signer:      signer,
		chainID:     big.NewInt(chainID),
		waitTimeout: waitTimeout,
	}
}

// WriteCall signs and broadcasts a state-changing call against contractAddr
// and returns the transaction hash.
func (s *TxSender) WriteCall(ctx context.Context, contractAddr string, calldata []byte) (string, error) {
	from := s.signer.Address()
	calldataHex := "0x" + hex.EncodeToString(calldata)

	gas, err := s.client.EstimateGas(ctx, from, contractAddr, calldataHex)
	if err != nil {
		gas = 100000 // fallback
	}

	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.client.GetNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := common.HexToAddress(contractAddr)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	return hash, nil
}

// AwaitConfirmation blocks until txHash is mined or the configured timeout
// expires. A revert or timeout is an error.
func (s *TxSender) AwaitConfirmation(ctx context.Context, txHash string) error {
	_, err := s.client.WaitForReceipt(ctx, txHash, s.waitTimeout)
	return err
}
