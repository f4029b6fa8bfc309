// Package binder fills request structs from path parameters, query
// strings and JSON bodies. Binders share one signature so handler.Wrap
// can chain them:
//
//	type LongPollRequest struct {
//		UserID int64  `path:"userID"`
//		Cursor *int64 `query:"cursor"`
//	}
//
// Only tagged fields are bound. Failures wrap ErrInvalidPath,
// ErrInvalidQuery, ErrInvalidJSON, ErrMissingContentType or
// ErrUnsupportedMediaType; IsBindingError recognizes all of them.
package binder
