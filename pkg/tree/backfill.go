package tree

// backfill replays construction events for the decorators held by reg over an
// existing tree: root init, then for every list (root list first) the list
// init followed by the owner's createList, then each owned node's init before
// descending into its own list. Reference entries are skipped because their
// node is visited through its owner.
func backfill(reg *Registry, r *Root) error {
	if err := reg.rootInit.fire(r); err != nil {
		return err
	}
	if r.children == nil {
		return nil
	}
	return backfillList(reg, r.children)
}

func backfillList(reg *Registry, l *NodeList) error {
	if err := reg.listInit.fire(l); err != nil {
		return err
	}
	if err := reg.createListChain(l.owner.Kind()).fire(l); err != nil {
		return err
	}
	for _, e := range l.entries {
		if e.kind != Owned {
			continue
		}
		if err := reg.nodeInit.fire(e.node); err != nil {
			return err
		}
		if e.node.children != nil {
			if err := backfillList(reg, e.node.children); err != nil {
				return err
			}
		}
	}
	return nil
}
