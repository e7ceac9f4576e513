package repository

import "context"

// SeedForTest runs raw statements through the executor bound to ctx.
func SeedForTest(ctx context.Context, r *Repository, stmts []string) error {
	exec := r.getExecutor(ctx)
	for _, s := range stmts {
		if _, err := exec.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
