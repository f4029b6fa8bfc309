package binder

import "net/http"

// Path binds `path:"name"` fields using extractor, typically chi.URLParam.
//
//	type MarkReadRequest struct {
//		NotificationID int64 `path:"notificationID"`
//	}
//
//	r.Put("/notifications/{notificationID}/read", handler.Wrap(h,
//		handler.WithBinders[MarkReadRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return ErrBinderNotApplicable
		}
		return bindToStruct(v, "path", func(name string) []string {
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		}, ErrInvalidPath)
	}
}
