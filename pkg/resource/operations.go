package resource

import (
	"context"
	"maps"

	"github.com/getmockd/restkit/pkg/pathutil"
	"github.com/getmockd/restkit/pkg/store"
)

// create inserts a new document built from the request body. A body _id that
// is already stored fails with the store's duplicate id error.
func (r *Resource) create(ctx context.Context, rc *RequestContext) (any, error) {
	if len(rc.Body) == 0 {
		return nil, &ValidationError{Message: MsgMissingBody}
	}

	doc, err := r.cfg.Model.Insert(ctx, r.cfg.Model.New(rc.Body))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// update merges the request body onto the stored document. The body's _id is
// ignored. There is no locking between the read and the write.
func (r *Resource) update(ctx context.Context, rc *RequestContext) (any, error) {
	if len(rc.Body) == 0 {
		return nil, &ValidationError{Message: MsgMissingBody}
	}
	if rc.ID == "" {
		return nil, &ValidationError{Message: MsgIDRequired}
	}

	fields := pathutil.OmitKeys(maps.Clone(rc.Body), store.IDField)

	doc, err := r.cfg.Model.FindByID(ctx, rc.ID)
	if err != nil {
		return nil, err
	}
	maps.Copy(doc, fields)

	saved, err := r.cfg.Model.Save(ctx, doc)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// get lists the documents matching the route id or the query filter.
func (r *Resource) get(ctx context.Context, rc *RequestContext) (any, error) {
	q := r.builder.Build(rc.ID, rc.Query)
	rc.List = &q

	docs, err := r.cfg.Model.Find(q.Filter).Sort(q.Sort).Limit(q.Limit).Skip(q.Skip).Exec(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []store.Document{}
	}
	return docs, nil
}

// delete removes the addressed document, or every document when the route
// carries no id.
func (r *Resource) delete(ctx context.Context, rc *RequestContext) (any, error) {
	var filter store.Document
	if rc.ID != "" {
		filter = store.Document{store.IDField: rc.ID}
	}

	n, err := r.cfg.Model.Remove(ctx, filter)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": n}, nil
}

func (r *Resource) post(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID != "" {
		return r.update(ctx, rc)
	}
	return r.create(ctx, rc)
}

// put also serves patch. Without an id it succeeds with a message.
func (r *Resource) put(ctx context.Context, rc *RequestContext) (any, error) {
	if rc.ID == "" {
		return map[string]any{"message": MsgIDRequired}, nil
	}
	return r.update(ctx, rc)
}
