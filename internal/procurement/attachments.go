package procurement

import (
	"context"
	"fmt"
	"strings"
)

// AttachQuotationDocument uploads file and stores it under kind. Attachments
// are allowed in every quotation status and replace an existing file of the same kind.
func (s *Service) AttachQuotationDocument(ctx context.Context, id int64, kind DocumentKind, file Upload) (QuotationRequest, error) {
	var problems []string
	if !kind.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown document kind %q", kind))
	}
	if strings.TrimSpace(file.Name) == "" || file.Body == nil {
		problems = append(problems, "file is required")
	}
	if len(problems) > 0 {
		return QuotationRequest{}, invalid(problems...)
	}

	release, err := s.lock(ctx, "rpq", id)
	if err != nil {
		return QuotationRequest{}, err
	}
	defer release()

	rpq, err := s.repo.GetQuotationRequest(ctx, id)
	if err != nil {
		return QuotationRequest{}, err
	}
	doc, err := s.repo.UploadFile(ctx, file)
	if err != nil {
		return QuotationRequest{}, err
	}
	docs := copyDocuments(rpq.Documents)
	docs[kind] = doc
	if err := s.repo.SetQuotationDocuments(ctx, id, docs); err != nil {
		return QuotationRequest{}, err
	}
	rpq.Documents = docs
	s.record(ctx, "RPQ_DOCUMENT_ATTACHED", "quotation_request", id, map[string]any{"kind": string(kind), "url": doc.URL})
	s.publish(ctx, QuotationChanged{ID: id, ControlNumber: rpq.ControlNumber, Change: ChangeAttached, Status: rpq.Status})
	return rpq, nil
}

// RemoveQuotationDocument drops the reference stored under kind. The stored file itself is kept.
func (s *Service) RemoveQuotationDocument(ctx context.Context, id int64, kind DocumentKind) (QuotationRequest, error) {
	release, err := s.lock(ctx, "rpq", id)
	if err != nil {
		return QuotationRequest{}, err
	}
	defer release()

	rpq, err := s.repo.GetQuotationRequest(ctx, id)
	if err != nil {
		return QuotationRequest{}, err
	}
	if _, ok := rpq.Documents[kind]; !ok {
		return QuotationRequest{}, fmt.Errorf("document %q on quotation %s: %w", kind, rpq.ControlNumber, ErrNotFound)
	}
	docs := copyDocuments(rpq.Documents)
	delete(docs, kind)
	if err := s.repo.SetQuotationDocuments(ctx, id, docs); err != nil {
		return QuotationRequest{}, err
	}
	rpq.Documents = docs
	s.record(ctx, "RPQ_DOCUMENT_REMOVED", "quotation_request", id, map[string]any{"kind": string(kind)})
	s.publish(ctx, QuotationChanged{ID: id, ControlNumber: rpq.ControlNumber, Change: ChangeDetached, Status: rpq.Status})
	return rpq, nil
}

func copyDocuments(in map[DocumentKind]Document) map[DocumentKind]Document {
	out := make(map[DocumentKind]Document, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
