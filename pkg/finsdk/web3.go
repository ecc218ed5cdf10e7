package finsdk

import (
	"context"
	"net/http"
)

// InitiateWeb3Login asks the backend for a challenge bound to the wallet.
func (c *Client) InitiateWeb3Login(ctx context.Context, walletAddress string) (*Web3Challenge, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/web3/initiate", web3InitiateRequest{
		WalletAddress: walletAddress,
	})
	if err != nil {
		return nil, err
	}

	var challenge Web3Challenge
	if _, err := decodeEnvelope(resp, &challenge); err != nil {
		return nil, err
	}

	return &challenge, nil
}

// VerifyWeb3Login submits the signed challenge. When the wallet belongs to a
// known user the backend sets the session cookies.
func (c *Client) VerifyWeb3Login(ctx context.Context, req Web3VerifyRequest) (*Web3Verification, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/web3/verify", req)
	if err != nil {
		return nil, err
	}

	var verification Web3Verification
	if _, err := decodeEnvelope(resp, &verification); err != nil {
		return nil, err
	}

	return &verification, nil
}

// LinkWallet attaches a verified wallet to an existing e-mail/password account.
func (c *Client) LinkWallet(ctx context.Context, req Web3LinkRequest) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/web3/link", req))
}
