package packetledger

import (
	"log/slog"

	"giftledger/contexts/value-distribution/packet-ledger/adapters/custody"
	"giftledger/contexts/value-distribution/packet-ledger/adapters/entropy"
	httpadapter "giftledger/contexts/value-distribution/packet-ledger/adapters/http"
	"giftledger/contexts/value-distribution/packet-ledger/adapters/memory"
	"giftledger/contexts/value-distribution/packet-ledger/adapters/secp256k1"
	"giftledger/contexts/value-distribution/packet-ledger/application"
	"giftledger/contexts/value-distribution/packet-ledger/ports"
)

// Module is the composition surface for the packet ledger. Runtime wiring
// consumes Handler; Store and Vault are exposed for tests and inspection.
type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
	Vault   *custody.Vault
}

type Dependencies struct {
	Repository  ports.PacketRepository
	Custodian   ports.FundsCustodian
	Signer      ports.SignerRecoverer
	Entropy     ports.EntropySource
	Events      ports.EventSink
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the ledger service against explicit ports.
func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:      deps.Repository,
		Custodian: deps.Custodian,
		Signer:    deps.Signer,
		Entropy:   deps.Entropy,
		Events:    deps.Events,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule wires the ledger against in-process adapters: map-backed
// store, vault custodian, clock-derived beacon, and secp256k1 recovery.
func NewInMemoryModule(events ports.EventSink, logger *slog.Logger) Module {
	store := memory.NewStore()
	vault := custody.NewVault()
	module := NewModule(Dependencies{
		Repository:  store,
		Custodian:   vault,
		Signer:      secp256k1.Recoverer{},
		Entropy:     entropy.NewClockBeacon(),
		Events:      events,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	module.Vault = vault
	return module
}
