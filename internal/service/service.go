// Package service exposes the chama engine over Connect.
//
// Handlers validate request messages, resolve the caller's chama roles
// once per request and translate engine errors into Connect codes. Each
// error carries a {"kind": ...} detail naming the apperr kind.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/auth"
	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateMsg checks the validate tags of a request message.
func validateMsg(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	problems := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
		}
	}
	return withKind(connect.NewError(connect.CodeInvalidArgument,
		errors.New("invalid request: "+strings.Join(problems, "; "))), apperr.KindValidation)
}

// toConnectError maps engine errors onto Connect codes. Internal details
// are logged and never sent to the client.
func toConnectError(op string, err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}

	kind := apperr.KindOf(err)
	var code connect.Code
	switch kind {
	case apperr.KindNotFound:
		code = connect.CodeNotFound
	case apperr.KindInvalidState, apperr.KindInsufficientBalance:
		code = connect.CodeFailedPrecondition
	case apperr.KindUnauthorized:
		code = connect.CodePermissionDenied
	case apperr.KindValidation:
		code = connect.CodeInvalidArgument
	default:
		slog.Error(op+" failed", "error", err)
		return withKind(connect.NewError(connect.CodeInternal, errors.New("internal error")), kind)
	}

	var ae *apperr.Error
	msg := err.Error()
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	return withKind(connect.NewError(code, errors.New(msg)), kind)
}

func withKind(ce *connect.Error, kind apperr.Kind) *connect.Error {
	detail, err := structpb.NewStruct(map[string]any{"kind": kind.String()})
	if err != nil {
		return ce
	}
	if d, err := connect.NewErrorDetail(detail); err == nil {
		ce.AddDetail(d)
	}
	return ce
}

// ErrorKind reads the apperr kind detail from a Connect error. It returns
// the empty string when the error carries none.
func ErrorKind(err error) string {
	var ce *connect.Error
	if !errors.As(err, &ce) {
		return ""
	}
	for _, d := range ce.Details() {
		msg, err := d.Value()
		if err != nil {
			continue
		}
		if s, ok := msg.(*structpb.Struct); ok {
			if v, ok := s.GetFields()["kind"]; ok {
				return v.GetStringValue()
			}
		}
	}
	return ""
}

// base is embedded by every engine-backed service.
type base struct {
	engine *engine.Engine
}

func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// actor resolves the authenticated caller and their chama roles.
func (b base) actor(ctx context.Context) (engine.Actor, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return engine.Actor{}, err
	}
	a, err := b.engine.ResolveActor(ctx, userID)
	if err != nil {
		return engine.Actor{}, toConnectError("resolve actor", err)
	}
	return a, nil
}

// begin validates msg and resolves the caller.
func (b base) begin(ctx context.Context, msg any) (engine.Actor, error) {
	if err := validateMsg(msg); err != nil {
		return engine.Actor{}, err
	}
	return b.actor(ctx)
}
