package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/docbridge/internal/store"
	"github.com/roach88/docbridge/internal/value"
)

// DocumentOptions holds flags for the document commands.
type DocumentOptions struct {
	*RootOptions
	Database  string
	Firestore string
	Merge     bool
}

// DocumentResult is the JSON form of a stored document.
type DocumentResult struct {
	Path       string `json:"path"`
	Seq        int64  `json:"seq,omitempty"`
	CreateTime string `json:"create_time"`
	UpdateTime string `json:"update_time"`
	Data       any    `json:"data"`
}

func documentCommand(rootOpts *RootOptions, use, short, long string, nargs int, run func(*DocumentOptions, []string, *cobra.Command) error) (*cobra.Command, *DocumentOptions) {
	opts := &DocumentOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.ExactArgs(nargs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Firestore, "firestore", "", "Cloud Firestore project ID (instead of --db)")
	cmd.MarkFlagsOneRequired("db", "firestore")
	cmd.MarkFlagsMutuallyExclusive("db", "firestore")
	return cmd, opts
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, opts := documentCommand(rootOpts, "set <path> <file>",
		"Write a host document to a path",
		`Write the document in <file> to <path>, replacing it, or merging into it
with --merge. Field transforms (!serverTimestamp, !increment, !arrayUnion,
!arrayRemove, !delete) are applied by the store.

Examples:
  docbridge set --db ./docs.db users/ada user.yaml
  docbridge set --db ./docs.db --merge users/ada patch.yaml
  docbridge set --firestore my-project users/ada user.yaml`,
		2, runSet)
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "merge into the existing document")
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := documentCommand(rootOpts, "update <path> <file>",
		"Update fields of an existing document",
		`Update fields of the document at <path>. Keys of the document in <file>
are dotted field paths, e.g. "address.city".

Example:
  docbridge update --db ./docs.db users/ada changes.yaml`,
		2, runUpdate)
	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := documentCommand(rootOpts, "get <path>",
		"Read a document",
		`Print the document at <path> as tagged YAML.

Example:
  docbridge get --db ./docs.db users/ada`,
		1, runGet)
	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := documentCommand(rootOpts, "add <collection> <file>",
		"Add a document with a generated ID",
		`Create a document in <collection> with a generated UUIDv7 ID and print
its path.

Example:
  docbridge add --db ./docs.db users user.yaml`,
		2, runAdd)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := documentCommand(rootOpts, "delete <path>",
		"Delete a document",
		`Delete the document at <path>. Deleting a missing document succeeds.`,
		1, runDelete)
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := documentCommand(rootOpts, "list <collection>",
		"List the documents of a collection",
		`Print every document directly in <collection>, ordered by ID.`,
		1, runList)
	return cmd
}

func openBackend(opts *DocumentOptions, f *OutputFormatter, cmd *cobra.Command) (backend, error) {
	if opts.Firestore != "" {
		db, err := openFirestore(cmd.Context(), opts.Firestore)
		if err != nil {
			return nil, reportCode(f, ErrCodeDatabase, "failed to open database", err)
		}
		f.VerboseLog("Connected to Firestore project %s", opts.Firestore)
		return db, nil
	}
	st, err := store.Open(opts.Database, store.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		return nil, reportCode(f, ErrCodeDatabase, "failed to open database", err)
	}
	f.VerboseLog("Opened %s", opts.Database)
	return sqliteBackend{st}, nil
}

// importDocument loads a host file and passes it through the bridge the
// way a host call would: tagged, encoded, decoded and resolved against st.
func importDocument(opts *DocumentOptions, f *OutputFormatter, cmd *cobra.Command, st backend, file string) (*value.Map, error) {
	v, err := loadHostFile(f, file)
	if err != nil {
		return nil, err
	}
	b, err := newBridge(opts.RootOptions, cmd, st)
	if err != nil {
		return nil, reportCode(f, ErrCodeInvalidArgument, "invalid codec", err)
	}
	data, err := b.Export(v)
	if err != nil {
		return nil, report(f, "failed to encode "+file, err)
	}
	doc, err := b.ImportDocument(data)
	if err != nil {
		return nil, report(f, "failed to decode "+file, err)
	}
	return doc, nil
}

func runSet(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := importDocument(opts, f, cmd, st, args[1])
	if err != nil {
		return err
	}
	ref := value.Reference{Path: args[0]}
	if err := st.Set(cmd.Context(), ref, doc, opts.Merge); err != nil {
		return report(f, "set failed", err)
	}
	return f.Success("set "+ref.Path+"\n", map[string]string{"path": ref.Path})
}

func runUpdate(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := importDocument(opts, f, cmd, st, args[1])
	if err != nil {
		return err
	}
	ref := value.Reference{Path: args[0]}
	if err := st.Update(cmd.Context(), ref, doc); err != nil {
		return report(f, "update failed", err)
	}
	return f.Success("updated "+ref.Path+"\n", map[string]string{"path": ref.Path})
}

func runGet(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.Get(cmd.Context(), value.Reference{Path: args[0]})
	if err != nil {
		return report(f, "get failed", err)
	}
	if f.Format == "json" {
		res, err := documentResult(doc)
		if err != nil {
			return report(f, "failed to encode document", err)
		}
		return f.Success("", res)
	}
	return outputValue(f, doc.Data)
}

func runAdd(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := importDocument(opts, f, cmd, st, args[1])
	if err != nil {
		return err
	}
	ref, err := st.Add(cmd.Context(), args[0], doc)
	if err != nil {
		return report(f, "add failed", err)
	}
	return f.Success(ref.Path+"\n", map[string]string{"path": ref.Path})
}

func runDelete(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ref := value.Reference{Path: args[0]}
	if err := st.Delete(cmd.Context(), ref); err != nil {
		return report(f, "delete failed", err)
	}
	return f.Success("deleted "+ref.Path+"\n", map[string]string{"path": ref.Path})
}

func runList(opts *DocumentOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	st, err := openBackend(opts, f, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.List(cmd.Context(), args[0])
	if err != nil {
		return report(f, "list failed", err)
	}

	if f.Format == "json" {
		results := make([]DocumentResult, 0, len(docs))
		for _, doc := range docs {
			res, err := documentResult(doc)
			if err != nil {
				return report(f, "failed to encode document", err)
			}
			results = append(results, res)
		}
		return f.Success("", results)
	}

	if len(docs) == 0 {
		return f.Success("No documents in "+args[0]+"\n", nil)
	}
	for _, doc := range docs {
		if err := f.Success("# "+doc.Ref.Path+"\n", nil); err != nil {
			return err
		}
		if err := outputValue(f, doc.Data); err != nil {
			return err
		}
	}
	return nil
}

func documentResult(doc *document) (DocumentResult, error) {
	raw, err := taggedJSON(doc.Data)
	if err != nil {
		return DocumentResult{}, err
	}
	return DocumentResult{
		Path:       doc.Ref.Path,
		Seq:        doc.Seq,
		CreateTime: doc.CreateTime.Time().Format(time.RFC3339Nano),
		UpdateTime: doc.UpdateTime.Time().Format(time.RFC3339Nano),
		Data:       raw,
	}, nil
}
