package commands

import (
	"fmt"

	"github.com/quickfixgo/enum"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/fixconv/internal/contracts"
)

// orderFlags collects an order from command line flags
type orderFlags struct {
	symbol    string
	price     string
	quantity  int64
	clOrdID   string
	ordStatus string
}

func (f *orderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "instrument symbol, e.g. AAPL")
	cmd.Flags().StringVar(&f.price, "price", "", "limit price, e.g. 150.5")
	cmd.Flags().Int64Var(&f.quantity, "quantity", 0, "order quantity")
	cmd.Flags().StringVar(&f.clOrdID, "cl-ord-id", "", "client order id")
	cmd.Flags().StringVar(&f.ordStatus, "ord-status", "", "order status: 0=New, 1=Partially Filled, 2=Filled (default 0)")
}

// order builds and validates the request the same way the HTTP layer does
func (f *orderFlags) order() (contracts.OrderRequest, error) {
	var price decimal.Decimal
	if f.price != "" {
		p, err := decimal.NewFromString(f.price)
		if err != nil {
			return contracts.OrderRequest{}, fmt.Errorf("invalid --price %q: %w", f.price, err)
		}
		price = p
	}

	o := contracts.OrderRequest{
		Symbol:    f.symbol,
		Price:     price,
		Quantity:  f.quantity,
		ClOrdID:   f.clOrdID,
		OrdStatus: enum.OrdStatus(f.ordStatus),
	}
	o.Normalize()

	if err := o.Validate(); err != nil {
		return contracts.OrderRequest{}, err
	}
	return o, nil
}
