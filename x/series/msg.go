package series

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
)

func init() {
	codec.RegisterMsg(&CreateMsg{}, "series/create")
	codec.RegisterMsg(&MintMsg{}, "series/mint")
	codec.RegisterMsg(&BuyMsg{}, "series/buy")
	codec.RegisterMsg(&DecreaseCopiesMsg{}, "series/decrease_copies")
	codec.RegisterMsg(&SetNonMintableMsg{}, "series/set_non_mintable")
	codec.RegisterMsg(&SetPriceMsg{}, "series/set_price")
	codec.RegisterMsg(&UpdateConfigurationMsg{}, "series/update_configuration")
}

func validateSeriesID(id string) error {
	if id == "" {
		return errors.ErrEmpty
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return errors.Wrapf(errors.ErrInput, "malformed series id %q", id)
		}
	}
	return nil
}

func validatePrice(forSale bool, price coin.Amount) error {
	if !forSale && !price.IsZero() {
		return errors.Wrap(errors.ErrInput, "price of a series not for sale")
	}
	return nil
}

// CreateMsg creates a new series. Creator is optional and must match the
// signer when set.
type CreateMsg struct {
	Metadata  *weave.Metadata
	Creator   weave.Address
	Template  Template
	ForSale   bool
	Price     coin.Amount
	Royalties Royalties
}

var _ weave.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string {
	return "series/create"
}

func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Creator) != 0 {
		errs = errors.AppendField(errs, "Creator", m.Creator.Validate())
	}
	tpl := m.Template
	tpl.Limited = tpl.Copies > 0
	errs = errors.AppendField(errs, "Template", tpl.Validate())
	errs = errors.AppendField(errs, "Price", validatePrice(m.ForSale, m.Price))
	errs = errors.AppendField(errs, "Royalties", m.Royalties.Validate())
	return errs
}

func (m *CreateMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *CreateMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// MintMsg mints an edition to the receiver without payment.
type MintMsg struct {
	Metadata *weave.Metadata
	SeriesID string
	Receiver weave.Address
}

var _ weave.Msg = (*MintMsg)(nil)

func (MintMsg) Path() string {
	return "series/mint"
}

func (m *MintMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	return errs
}

func (m *MintMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *MintMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// BuyMsg buys an edition of a priced series. The signer receives the
// edition unless a receiver is set.
type BuyMsg struct {
	Metadata *weave.Metadata
	SeriesID string
	Receiver weave.Address
}

var _ weave.Msg = (*BuyMsg)(nil)

func (BuyMsg) Path() string {
	return "series/buy"
}

func (m *BuyMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
	if len(m.Receiver) != 0 {
		errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	}
	return errs
}

func (m *BuyMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *BuyMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// DecreaseCopiesMsg lowers the copies limit of a series.
type DecreaseCopiesMsg struct {
	Metadata *weave.Metadata
	SeriesID string
	Decrease uint64
}

var _ weave.Msg = (*DecreaseCopiesMsg)(nil)

func (DecreaseCopiesMsg) Path() string {
	return "series/decrease_copies"
}

func (m *DecreaseCopiesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
	return errs
}

func (m *DecreaseCopiesMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *DecreaseCopiesMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// SetNonMintableMsg stops minting of a series without a copies limit.
type SetNonMintableMsg struct {
	Metadata *weave.Metadata
	SeriesID string
}

var _ weave.Msg = (*SetNonMintableMsg)(nil)

func (SetNonMintableMsg) Path() string {
	return "series/set_non_mintable"
}

func (m *SetNonMintableMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
	return errs
}

func (m *SetNonMintableMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SetNonMintableMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// SetPriceMsg changes the price of a series. Setting ForSale to false
// takes the series off sale.
type SetPriceMsg struct {
	Metadata *weave.Metadata
	SeriesID string
	ForSale  bool
	Price    coin.Amount
}

var _ weave.Msg = (*SetPriceMsg)(nil)

func (SetPriceMsg) Path() string {
	return "series/set_price"
}

func (m *SetPriceMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
	errs = errors.AppendField(errs, "Price", validatePrice(m.ForSale, m.Price))
	return errs
}

func (m *SetPriceMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SetPriceMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// UpdateConfigurationMsg patches the royalty bounds.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata
	Patch    *Configuration
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "series/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}
