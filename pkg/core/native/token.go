package native

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-vesting/pkg/core/dao"
	"github.com/nspcc-dev/neo-vesting/pkg/core/interop"
	"github.com/nspcc-dev/neo-vesting/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
	"github.com/nspcc-dev/neo-vesting/pkg/util"
)

const transferEventName = "Transfer"

// Token is a fungible token vested to investors. Minting and burning are
// restricted to accounts having corresponding Management permissions.
type Token struct {
	interop.ContractMD
	Management *Management

	name     string
	symbol   string
	decimals uint8
}

var _ interop.Contract = (*Token)(nil)

func newToken(name, symbol string, decimals uint8) *Token {
	return &Token{
		ContractMD: *interop.NewContractMD(nativenames.Token),
		name:       name,
		symbol:     symbol,
		decimals:   decimals,
	}
}

// Metadata implements the interop.Contract interface.
func (c *Token) Metadata() *interop.ContractMD {
	return &c.ContractMD
}

// Initialize implements the interop.Contract interface.
func (c *Token) Initialize(_ *interop.Context) error {
	return nil
}

// TokenName returns the token name.
func (c *Token) TokenName() string {
	return c.name
}

// Symbol returns the token symbol.
func (c *Token) Symbol() string {
	return c.symbol
}

// Decimals returns the number of token decimals.
func (c *Token) Decimals() uint8 {
	return c.decimals
}

// TotalSupply returns the total token supply.
func (c *Token) TotalSupply(d *dao.Simple) (*uint256.Int, error) {
	return d.GetTotalSupply()
}

// BalanceOf returns the token balance of the account.
func (c *Token) BalanceOf(d *dao.Simple, acc util.Uint160) (*uint256.Int, error) {
	return d.GetBalance(acc)
}

func addrParam(name string, u *util.Uint160) state.NotificationParam {
	if u == nil {
		return state.NewParam(name)
	}
	return state.NewParam(name, u.String())
}

func (c *Token) emitTransfer(ic *interop.Context, from, to *util.Uint160, amount *uint256.Int) {
	ic.AddNotification(c.Name, transferEventName,
		addrParam("from", from),
		addrParam("to", to),
		state.NewParam("amount", amount.Dec()))
}

func (c *Token) checkPermission(ic *interop.Context, caller util.Uint160, p Permission) error {
	ok, err := c.Management.HasPermission(ic.DAO, caller, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s has no %s permission", ErrUnauthorized, caller, p)
	}
	return nil
}

// Mint creates amount of tokens on the account, caller must have
// CanMintTokens permission.
func (c *Token) Mint(ic *interop.Context, caller, to util.Uint160, amount *uint256.Int) error {
	if err := c.checkPermission(ic, caller, CanMintTokens); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrInvalidAddress
	}
	if amount.IsZero() {
		return nil
	}
	supply, err := c.TotalSupply(ic.DAO)
	if err != nil {
		return err
	}
	if _, overflow := supply.AddOverflow(supply, amount); overflow {
		return ErrOverflow
	}
	balance, err := c.BalanceOf(ic.DAO, to)
	if err != nil {
		return err
	}
	// Can't overflow since balance <= supply.
	balance.Add(balance, amount)
	ic.DAO.PutBalance(to, balance)
	ic.DAO.PutTotalSupply(supply)
	c.emitTransfer(ic, nil, &to, amount)
	return nil
}

// Burn destroys amount of tokens of the account, caller must have
// CanBurnTokens permission.
func (c *Token) Burn(ic *interop.Context, caller, from util.Uint160, amount *uint256.Int) error {
	if err := c.checkPermission(ic, caller, CanBurnTokens); err != nil {
		return err
	}
	if from.IsZero() {
		return ErrInvalidAddress
	}
	if amount.IsZero() {
		return nil
	}
	balance, err := c.BalanceOf(ic.DAO, from)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, %s needed", ErrInsufficientFunds, from, balance.Dec(), amount.Dec())
	}
	supply, err := c.TotalSupply(ic.DAO)
	if err != nil {
		return err
	}
	balance.Sub(balance, amount)
	supply.Sub(supply, amount)
	ic.DAO.PutBalance(from, balance)
	ic.DAO.PutTotalSupply(supply)
	c.emitTransfer(ic, &from, nil, amount)
	return nil
}

// Transfer moves amount of tokens from one account to another.
func (c *Token) Transfer(ic *interop.Context, from, to util.Uint160, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrInvalidAddress
	}
	balance, err := c.BalanceOf(ic.DAO, from)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, %s needed", ErrInsufficientFunds, from, balance.Dec(), amount.Dec())
	}
	if !from.Equals(to) && !amount.IsZero() {
		toBalance, err := c.BalanceOf(ic.DAO, to)
		if err != nil {
			return err
		}
		balance.Sub(balance, amount)
		toBalance.Add(toBalance, amount)
		ic.DAO.PutBalance(from, balance)
		ic.DAO.PutBalance(to, toBalance)
	}
	c.emitTransfer(ic, &from, &to, amount)
	return nil
}
