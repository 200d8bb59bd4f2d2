package wfgraph

import (
	"context"
	"errors"

	"github.com/meikuraledutech/wfgraph/ctxlog"
)

// DefaultPageSize is the page size used when reading records from a source.
const DefaultPageSize = 200

// FetchAll reads every record of a template, following pages until the source
// reports no next page. Any failure is returned as a *FetchError and no
// partial record set is returned. A page that is empty but claims a next
// page is an error, so a misbehaving source cannot loop forever.
func FetchAll(ctx context.Context, src RecordSource, templateID string, pageSize int) ([]Record, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var records []Record
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{TemplateID: templateID, Page: page, Err: err}
		}
		p, err := src.ListRecords(ctx, templateID, page, pageSize)
		if err != nil {
			return nil, &FetchError{TemplateID: templateID, Page: page, Err: err}
		}
		if p == nil {
			return nil, &FetchError{TemplateID: templateID, Page: page, Err: errors.New("empty page")}
		}
		if p.Next && len(p.Results) == 0 {
			return nil, &FetchError{TemplateID: templateID, Page: page, Err: errors.New("empty page with next set")}
		}
		records = append(records, p.Results...)
		if !p.Next {
			ctxlog.FromContext(ctx).Debug("fetched workflow records",
				"template", templateID, "pages", page, "records", len(records))
			return records, nil
		}
	}
}
