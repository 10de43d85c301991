package folders

import (
	"context"
	"errors"
	"log/slog"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*Folder, error) {
	if _, ok := ParentRef(id); !ok {
		return nil, ErrFolderNotFound
	}
	return s.store.Get(ctx, id)
}

// List returns folders ordered by path. A parent of "root" lists the top level.
func (s *Service) List(ctx context.Context, parent string) ([]Folder, error) {
	switch {
	case parent == "":
		return s.store.List(ctx, ListFilter{})
	case parent == RootSentinel:
		return s.store.List(ctx, ListFilter{TopLevel: true})
	}
	parentID, ok := ParentRef(parent)
	if !ok {
		return s.store.List(ctx, ListFilter{TopLevel: true})
	}
	if _, err := s.store.Get(ctx, parentID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, ListFilter{ParentID: parentID})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Folder, error) {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	var created *Folder
	err = s.store.Transaction(ctx, func(tx StoreAPI) error {
		folder := Folder{Name: name, Description: in.Description, Path: BuildPath("", name)}
		if parentID, ok := ParentRef(in.ParentID); ok {
			parent, err := tx.Get(ctx, parentID)
			if err != nil {
				if errors.Is(err, ErrFolderNotFound) {
					return ErrParentNotFound
				}
				return err
			}
			folder.ParentID = &parent.ID
			folder.Path = BuildPath(parent.Path, name)
		}
		taken, err := tx.SiblingNameExists(ctx, folder.ParentID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}
		created, err = tx.Create(ctx, folder)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update renames and/or moves a folder. Descendant paths are rewritten in the
// same transaction so the path invariant holds for the whole subtree.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Folder, error) {
	if _, ok := ParentRef(id); !ok {
		return nil, ErrFolderNotFound
	}
	var updated *Folder
	err := s.store.Transaction(ctx, func(tx StoreAPI) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}

		name := current.Name
		if in.Name != nil {
			if name, err = NormalizeName(*in.Name); err != nil {
				return err
			}
		}

		parentID := current.ParentID
		parentPath := ""
		if in.ParentID.Set {
			parentID = nil
			if ref, ok := ParentRef(in.ParentID.V); ok && !in.ParentID.Null {
				parentID = &ref
			}
		}
		if parentID != nil {
			parent, err := s.resolveNewParent(ctx, tx, current.ID, *parentID)
			if err != nil {
				return err
			}
			parentPath = parent.Path
		}

		changes := Changes{Description: in.Description}
		moved := !sameParent(parentID, current.ParentID)
		if name != current.Name {
			changes.Name = &name
		}
		if moved {
			if parentID == nil {
				changes.ParentID.Set, changes.ParentID.Null = true, true
			} else {
				changes.ParentID.Set, changes.ParentID.V = true, *parentID
			}
		}
		if moved || changes.Name != nil {
			taken, err := tx.SiblingNameExists(ctx, parentID, name, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrNameTaken
			}
		}

		newPath := BuildPath(parentPath, name)
		if newPath != current.Path {
			changes.Path = &newPath
		}
		if err := tx.Update(ctx, current.ID, changes); err != nil {
			return err
		}
		if changes.Path != nil {
			rewritten, err := rewriteDescendants(ctx, tx, current.ID, newPath)
			if err != nil {
				return err
			}
			slog.Info("folder subtree paths rewritten", "folderId", current.ID, "path", newPath, "descendants", rewritten)
		}
		updated, err = tx.Get(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, ok := ParentRef(id); !ok {
		return ErrFolderNotFound
	}
	return s.store.Delete(ctx, id)
}

// resolveNewParent loads the target parent and rejects it when it is the
// folder itself or sits underneath it.
func (s *Service) resolveNewParent(ctx context.Context, tx StoreAPI, folderID, parentID string) (*Folder, error) {
	if parentID == folderID {
		return nil, ErrCycle
	}
	parent, err := tx.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	ancestor := parent
	for depth := 0; ancestor.ParentID != nil; depth++ {
		if *ancestor.ParentID == folderID {
			return nil, ErrCycle
		}
		if depth >= maxDepth {
			return nil, ErrTreeTooDeep
		}
		if ancestor, err = tx.Get(ctx, *ancestor.ParentID); err != nil {
			return nil, err
		}
	}
	return parent, nil
}

// rewriteDescendants walks the subtree below rootID breadth first and
// recomputes each path from its parent's new path.
func rewriteDescendants(ctx context.Context, tx StoreAPI, rootID, rootPath string) (int, error) {
	type node struct {
		id    string
		path  string
		depth int
	}
	queue := []node{{id: rootID, path: rootPath}}
	rewritten := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.depth >= maxDepth {
			return rewritten, ErrTreeTooDeep
		}
		children, err := tx.ListChildren(ctx, n.id)
		if err != nil {
			return rewritten, err
		}
		for _, child := range children {
			path := BuildPath(n.path, child.Name)
			if path != child.Path {
				if err := tx.UpdatePath(ctx, child.ID, path); err != nil {
					return rewritten, err
				}
				rewritten++
			}
			queue = append(queue, node{id: child.ID, path: path, depth: n.depth + 1})
		}
	}
	return rewritten, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
