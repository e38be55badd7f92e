package auth

import (
	"context"
	"fmt"

	"docvault/internal/domain"
	"docvault/internal/domain/models/docsystem"
)

// parentLinkLoader fetches (id, parent_id) pairs for a batch of folder ids.
type parentLinkLoader interface {
	GetParentLinks(ctx context.Context, ids []string) ([]docsystem.ParentLink, error)
}

// loadAncestry fetches parent links level by level until every chain that
// starts at a seed reaches a root or a folder already known. known holds
// links the caller already has (usually the direct-access folders).
//
// Each round is one batched query, so the number of queries is bounded by
// the deepest chain, not by the number of folders.
func loadAncestry(ctx context.Context, loader parentLinkLoader, known map[string]*string, seeds []string, maxDepth int) (map[string]*string, error) {
	links := make(map[string]*string, len(known)+len(seeds))
	for id, parent := range known {
		links[id] = parent
	}

	// referrer remembers which child pointed at a pending id
	referrer := map[string]string{}
	var frontier []string
	queue := func(id, from string) {
		if _, ok := links[id]; ok {
			return
		}
		if _, ok := referrer[id]; ok {
			return
		}
		referrer[id] = from
		frontier = append(frontier, id)
	}

	for _, id := range seeds {
		queue(id, "")
	}
	for id, parent := range known {
		if parent != nil {
			queue(*parent, id)
		}
	}

	for round := 0; len(frontier) > 0; round++ {
		if round > maxDepth {
			return nil, &domain.IntegrityError{
				FolderID: frontier[0],
				Reason:   fmt.Sprintf("parent chain exceeds %d levels", maxDepth),
			}
		}

		batch := frontier
		frontier = nil

		fetched, err := loader.GetParentLinks(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("load parent links: %w", err)
		}
		for _, l := range fetched {
			links[l.ID] = l.ParentID
		}

		for _, id := range batch {
			parent, ok := links[id]
			if !ok {
				child := referrer[id]
				if child == "" {
					return nil, &domain.IntegrityError{FolderID: id, Reason: "folder does not exist"}
				}
				return nil, &domain.IntegrityError{
					FolderID: child,
					Reason:   fmt.Sprintf("parent %s does not exist", id),
				}
			}
			if parent != nil {
				queue(*parent, id)
			}
		}
	}

	return links, nil
}

// ancestorClosure returns every folder on the path from each seed to its
// root, seeds included. links must cover every chain (see loadAncestry).
// A loop, a missing link, or a chain longer than maxDepth is an
// IntegrityError naming the folder where the walk stopped.
func ancestorClosure(links map[string]*string, seeds []string, maxDepth int) (map[string]struct{}, error) {
	// resolved holds folders whose chain is known to reach a root
	resolved := make(map[string]struct{}, len(links))

	for _, start := range seeds {
		var path []string
		onPath := map[string]struct{}{}

		cur := start
		for {
			if _, ok := resolved[cur]; ok {
				break
			}
			if _, ok := onPath[cur]; ok {
				return nil, &domain.IntegrityError{FolderID: cur, Reason: "cycle in parent chain"}
			}
			if len(path) >= maxDepth {
				return nil, &domain.IntegrityError{
					FolderID: start,
					Reason:   fmt.Sprintf("parent chain exceeds %d levels", maxDepth),
				}
			}

			parent, ok := links[cur]
			if !ok {
				if len(path) == 0 {
					return nil, &domain.IntegrityError{FolderID: cur, Reason: "folder does not exist"}
				}
				return nil, &domain.IntegrityError{
					FolderID: path[len(path)-1],
					Reason:   fmt.Sprintf("parent %s does not exist", cur),
				}
			}

			onPath[cur] = struct{}{}
			path = append(path, cur)
			if parent == nil {
				break
			}
			cur = *parent
		}

		for _, id := range path {
			resolved[id] = struct{}{}
		}
	}

	return resolved, nil
}

// classify assigns access flags to every visible folder.
//
//	direct            -> has access, can view content
//	shared only       -> has access, has shared files
//	ancestor only     -> has access
func classify(visible map[string]struct{}, direct, shared map[string]struct{}) docsystem.Visibility {
	vis := make(docsystem.Visibility, len(visible))
	for id := range visible {
		_, isDirect := direct[id]
		_, isShared := shared[id]
		vis[id] = docsystem.FolderAccess{
			HasAccess:      true,
			CanViewContent: isDirect,
			HasSharedFiles: isShared && !isDirect,
		}
	}
	return vis
}
