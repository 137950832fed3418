package offsets

import (
	"fmt"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/signature"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// Aggregate builds the offset table for every configured module, in order.
// Individual stale signatures are tolerated, but a provider that cannot
// supply a module's image fails the whole run: a table missing an entire
// module is not a usable partial result.
func Aggregate(modules []string, provider image.Provider, sigs []*types.Signature, sink Sink) (types.Table, error) {
	table := make(types.Table, len(modules))
	for _, module := range modules {
		view, err := provider.GetImage(module)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", module, err)
		}
		table[module] = Build(signature.ForModule(sigs, module), view, sink)
	}
	return table, nil
}
