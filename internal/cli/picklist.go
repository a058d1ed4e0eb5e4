package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	orderapp "github.com/heoquay/backend/internal/application/order"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/spf13/cobra"
)

func newPickListCommand(root *rootOptions) *cobra.Command {
	var (
		date    string
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "pick-list",
		Short: "Print what the kitchen has to prepare for a day",
		Long: `pick-list fetches every order, keeps the non-cancelled ones of the
given day and sums their line items by product code and size.`,
		Example: `  hqctl pick-list
  hqctl pick-list --date 2024-02-10 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := root.setup()
			if err != nil {
				return err
			}
			defer e.close()

			var day time.Time
			if date != "" {
				if day = e.cal.ParseDate(date); day.IsZero() {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD or DD/MM/YYYY", date)
				}
			}

			ctx := upstream.WithCredentials(cmd.Context(), e.creds)
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			list, err := e.orders.PickList(ctx, day)
			if err != nil {
				return fmt.Errorf("failed to build pick list: %w", err)
			}

			resp := orderapp.ToPickListResponse(list, e.cal)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return writePickList(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to prepare, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the pick list as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

func writePickList(w io.Writer, p orderapp.PickListResponse) error {
	if _, err := fmt.Fprintf(w, "Ngày %s (%s) - %d đơn\n", p.Ngay, p.NgayAm, p.TongDon); err != nil {
		return err
	}
	if len(p.Items) == 0 {
		_, err := fmt.Fprintln(w, "Không có sản phẩm nào")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MÃ\tSẢN PHẨM\tKÍCH THƯỚC\tSỐ LƯỢNG\tSỐ ĐƠN")
	for _, it := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", it.MaSanPham, it.TenSanPham, it.KichThuoc, it.SoLuong, it.SoDon)
	}
	return tw.Flush()
}
