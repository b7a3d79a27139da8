package cmd

import (
	"github.com/voltdata/evagent/internal/config"
	"github.com/voltdata/evagent/internal/currency"
	"github.com/voltdata/evagent/internal/docstore"
	"github.com/voltdata/evagent/internal/logging"
	"github.com/voltdata/evagent/internal/query"
	"github.com/voltdata/evagent/internal/schema"
	"github.com/voltdata/evagent/internal/storage"
	"github.com/voltdata/evagent/internal/tools"
)

// runtime bundles the collaborators most commands need. Close releases the
// underlying database handle.
type runtime struct {
	store      *storage.Store
	catalog    *schema.Catalog
	dispatcher *tools.Dispatcher
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// openRuntime opens the datastore and wires the full tool stack on top of it.
func openRuntime(cfg *config.Config) (*runtime, error) {
	store, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	catalog := schema.NewCatalog(store.DB(), cfg.Database.Table)
	executor := query.NewExecutor(
		store.DB(), cfg.QueryTimeout(), cfg.Query.MaxRows, cfg.Query.MaxRetries)
	limits := query.Limits{Default: cfg.Query.DefaultLimit, Max: cfg.Query.MaxRows}

	dispatcher := tools.NewDispatcher(
		catalog, executor, limits,
		currency.NewConverter(), docstore.NewStore(), logging.GetLogger())

	return &runtime{
		store:      store,
		catalog:    catalog,
		dispatcher: dispatcher,
	}, nil
}
