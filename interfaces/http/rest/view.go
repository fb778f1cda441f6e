package rest

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"go.uber.org/zap"
)

var (
	errorType     = reflect.TypeFor[error]()
	responderType = reflect.TypeFor[Responder]()
)

// viewResult says how a view reports its outcome.
type viewResult int

const (
	resultNone viewResult = iota
	resultError
	resultResponder
	resultResponderError
)

// view is an inspected handler function. Its signature is built once at
// registration and resolved again for every request.
type view struct {
	signature *inject.Signature
	result    viewResult
	engine    *inject.Engine
	errors    *apperrors.ErrorHandler
	logger    *zap.Logger
}

func newView(engine *inject.Engine, errs *apperrors.ErrorHandler, logger *zap.Logger, fn any, params []inject.Parameter) (*view, error) {
	signature, err := engine.Inspect(fn, params...)
	if err != nil {
		return nil, err
	}
	result, err := classifyResults(reflect.TypeOf(fn))
	if err != nil {
		return nil, err
	}
	return &view{
		signature: signature,
		result:    result,
		engine:    engine,
		errors:    errs,
		logger:    logger,
	}, nil
}

func classifyResults(t reflect.Type) (viewResult, error) {
	switch {
	case t.NumOut() == 0:
		return resultNone, nil
	case t.NumOut() == 1 && t.Out(0) == errorType:
		return resultError, nil
	case t.NumOut() == 1 && t.Out(0).Implements(responderType):
		return resultResponder, nil
	case t.NumOut() == 2 && t.Out(0).Implements(responderType) && t.Out(1) == errorType:
		return resultResponderError, nil
	}
	return 0, &inject.Error{
		Kind:    inject.KindInvalidCallable,
		Message: fmt.Sprintf("view %s must return nothing, error, Responder or (Responder, error)", t),
	}
}

// Values returns the prepared values of one request.
func Values(w http.ResponseWriter, r *http.Request) inject.Values {
	values := make(inject.Values, 3)
	inject.Provide(values, r)
	inject.Provide(values, w)
	inject.Provide[context.Context](values, r.Context())
	return values
}

func (v *view) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out, err := v.engine.Call(r.Context(), v.signature, Values(w, r))
	if err != nil {
		v.errors.Handle(w, r, err)
		return
	}

	var responder Responder
	switch v.result {
	case resultNone:
		return
	case resultError:
		err = asError(out[0])
	case resultResponder:
		responder = asResponder(out[0])
	case resultResponderError:
		responder, err = asResponder(out[0]), asError(out[1])
	}
	if err != nil {
		v.errors.Handle(w, r, err)
		return
	}
	if responder == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := responder.Respond(w, r); err != nil {
		v.logger.Warn("Failed to write response",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func asResponder(v reflect.Value) Responder {
	if (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) && v.IsNil() {
		return nil
	}
	return v.Interface().(Responder)
}
