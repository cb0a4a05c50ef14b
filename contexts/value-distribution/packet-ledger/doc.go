// Package packetledger implements the signature-gated gift-packet ledger:
// funded pools of a fungible unit split among a bounded number of claimants,
// where each claim carries a one-time recoverable-signature token bound to
// the claimant identity.
//
// Domain and application logic stay decoupled from runtime/platform concerns
// through ports and adapter composition.
package packetledger
