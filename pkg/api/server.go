package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/writer"
)

// Server hosts the ingestion endpoints over a Writer.
type Server struct {
	writer *writer.Writer
	log    *slog.Logger
}

func NewServer(w *writer.Writer, log *slog.Logger) *Server {
	return &Server{writer: w, log: log}
}

// Routes registers the ingestion handlers on a mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/transactions", s.handleTransaction)
	mux.HandleFunc("/v1/confirmations", s.handleConfirmation)
	mux.HandleFunc("/v1/transfers", s.handleTokenTransfer)
	mux.HandleFunc("/v1/internal-txs", s.handleInternalTx)
	mux.HandleFunc("/v1/statuses", s.handleStatus)
	mux.HandleFunc("/v1/master-copies", s.handleMasterCopy)
	mux.HandleFunc("/healthz", s.handleHealth)
}

// TransactionRequest is an API-submitted multisig transaction proposal.
type TransactionRequest struct {
	SafeTxHash string `json:"safe_tx_hash"`
	Safe       string `json:"safe"`
	Proposer   string `json:"proposer,omitempty"`
	Executed   bool   `json:"executed,omitempty"`
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.SafeTxHash == "" || req.Safe == "" {
		WriteBadRequest(w, "Missing required fields: safe_tx_hash, safe")
		return
	}

	now := time.Now().UTC()
	tx := &models.MultisigTransaction{
		SafeTxHash: req.SafeTxHash,
		Safe:       req.Safe,
		Proposer:   req.Proposer,
		Executed:   req.Executed,
		Created:    now,
		Modified:   now,
	}
	if err := s.writer.CreateTransaction(r.Context(), tx); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, tx)
}

// ConfirmationRequest is an API-submitted signature confirmation.
type ConfirmationRequest struct {
	SafeTxHash string `json:"safe_tx_hash"`
	Owner      string `json:"owner"`
	Signature  []byte `json:"signature,omitempty"`
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.SafeTxHash == "" || req.Owner == "" {
		WriteBadRequest(w, "Missing required fields: safe_tx_hash, owner")
		return
	}

	c := &models.MultisigConfirmation{
		MultisigTransactionHash: req.SafeTxHash,
		Owner:                   req.Owner,
		Signature:               req.Signature,
		Created:                 time.Now().UTC(),
	}
	if err := s.writer.CreateConfirmation(r.Context(), c); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, c)
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var t models.TokenTransfer
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if t.TxHash == "" {
		WriteBadRequest(w, "Missing required field: TxHash")
		return
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	if err := s.writer.CreateTokenTransfer(r.Context(), &t); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, &t)
}

func (s *Server) handleInternalTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var t models.InternalTx
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if t.TxHash == "" {
		WriteBadRequest(w, "Missing required field: TxHash")
		return
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	if err := s.writer.CreateInternalTx(r.Context(), &t); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, &t)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var last models.SafeLastStatus
	if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if last.Address == "" {
		WriteBadRequest(w, "Missing required field: Address")
		return
	}
	if err := s.writer.SaveLastStatus(r.Context(), &last); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, &last)
}

func (s *Server) handleMasterCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteMethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var mc models.MasterCopy
	if err := json.NewDecoder(r.Body).Decode(&mc); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if mc.Address == "" || mc.Version == "" {
		WriteBadRequest(w, "Missing required fields: Address, Version")
		return
	}
	if err := s.writer.SaveMasterCopy(r.Context(), &mc); err != nil {
		WriteInternal(w, err)
		return
	}
	writeCreated(w, &mc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeCreated(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(body)
}
