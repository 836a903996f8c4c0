package gconf

import (
	"reflect"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x"
)

// OwnedConfig is a configuration that only its owner may change, for
// example the fee configuration naming the treasury.
type OwnedConfig interface {
	Configuration
	GetOwner() weave.Address
}

// UpdateConfigurationHandler applies the patch messages of one package.
// A patch message has a Patch field holding a pointer to the configuration
// type. Every non zero field of the patch replaces the stored value.
type UpdateConfigurationHandler struct {
	pkg       string
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(weave.ReadOnlyKVStore) (weave.Address, error)
}

var _ weave.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns the patch handler of a package.
// config is a pointer to a zero configuration and defines the type.
//
// A patch must be signed by the owner of the stored configuration. When
// nothing is stored yet, initAdmin, if not nil, names who may create it.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initAdmin func(weave.ReadOnlyKVStore) (weave.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{pkg: pkg, config: config, auth: auth, initAdmin: initAdmin}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg)
	return &weave.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	// The handler is shared between calls.
	current := reflect.New(reflect.TypeOf(h.config).Elem()).Interface().(OwnedConfig)
	if err := h.authorize(ctx, db, current); err != nil {
		return err
	}
	p, err := patchOf(tx)
	if err != nil {
		return errors.Wrap(err, "patch")
	}
	if err := merge(current, p); err != nil {
		return err
	}
	if err := Save(db, h.pkg, current); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	return nil
}

// authorize loads the stored configuration into current and checks that
// the transaction is signed by whoever may change it.
func (h UpdateConfigurationHandler) authorize(ctx weave.Context, db weave.KVStore, current OwnedConfig) error {
	var allowed weave.Address
	switch err := Load(db, h.pkg, current); {
	case err == nil:
		allowed = current.GetOwner()
	case errors.ErrNotFound.Is(err):
		if h.initAdmin == nil {
			return errors.Wrapf(errors.ErrUnauthorized, "no %s configuration to update", h.pkg)
		}
		admin, err := h.initAdmin(db)
		if err != nil {
			return errors.Wrap(err, "initialization admin")
		}
		allowed = admin
	default:
		return errors.Wrap(err, "load configuration")
	}
	if !x.IsSigner(ctx, h.auth, allowed) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s configuration owner signature required", h.pkg)
	}
	return nil
}

// merge copies the non zero fields of p into current.
func merge(current, p OwnedConfig) error {
	if reflect.TypeOf(current) != reflect.TypeOf(p) {
		return errors.Wrapf(errors.ErrMsg, "%T cannot patch %T", p, current)
	}
	dst := reflect.ValueOf(current).Elem()
	src := reflect.ValueOf(p).Elem()
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		if !reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			dst.Field(i).Set(f)
		}
	}
	return nil
}

// patchOf returns the validated Patch field of the message of tx.
func patchOf(tx weave.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported message %T", msg)
	}
	f := v.Elem().FieldByName("Patch")
	if !f.IsValid() || f.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, "%T has no Patch field", msg)
	}
	if f.IsNil() {
		return nil, errors.Wrap(errors.ErrState, "Patch is required")
	}
	p, ok := f.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "%s is not a configuration", f.Type())
	}
	return p, nil
}
