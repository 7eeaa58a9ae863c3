package container

import "fmt"

// aliaser maps alternate identifiers to a canonical one.
type aliaser struct {
	// alias → abstract
	aliases map[any]any

	// abstract → aliases, in registration order
	abstractAliases map[any][]any
}

func newAliaser() *aliaser {
	a := &aliaser{}
	a.reset()
	return a
}

func (a *aliaser) reset() {
	a.aliases = make(map[any]any)
	a.abstractAliases = make(map[any][]any)
}

func (a *aliaser) add(abstract, alias any) {
	a.aliases[alias] = abstract
	a.abstractAliases[abstract] = append(a.abstractAliases[abstract], alias)
}

func (a *aliaser) isAlias(name any) bool {
	_, ok := a.aliases[name]
	return ok
}

func (a *aliaser) forget(name any) {
	delete(a.aliases, name)
}

// get follows the alias chain to the canonical identifier.
func (a *aliaser) get(abstract any) (any, error) {
	if !isIdentifier(abstract) {
		return nil, &NotInstantiableError{Concrete: fmt.Sprintf("%T", abstract)}
	}
	path := []any{abstract}
	current := abstract
	for {
		next, ok := a.aliases[current]
		if !ok {
			return current, nil
		}
		if next == current {
			return nil, &SelfAliasError{Abstract: Name(current)}
		}
		for _, seen := range path {
			if seen == next {
				return nil, &CyclicDependencyError{Path: names(append(path, next))}
			}
		}
		path = append(path, next)
		current = next
	}
}

// removeAbstractAlias drops searched from every reverse alias list.
func (a *aliaser) removeAbstractAlias(searched any) {
	if !a.isAlias(searched) {
		return
	}
	for abstract, aliases := range a.abstractAliases {
		kept := aliases[:0]
		for _, alias := range aliases {
			if alias != searched {
				kept = append(kept, alias)
			}
		}
		a.abstractAliases[abstract] = kept
	}
}

// Alias registers alias as another name for abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias(container.TypeOf[Cache](), "cache")
func (c *Container) Alias(abstract, alias any) error {
	if !isIdentifier(abstract) || !isIdentifier(alias) {
		return &BindingError{Abstract: Name(abstract), Reason: "alias and abstract must be comparable identifiers"}
	}
	if abstract == alias {
		return &SelfAliasError{Abstract: Name(abstract)}
	}
	c.aliases.add(abstract, alias)
	return nil
}

// GetAlias returns the canonical identifier for abstract.
func (c *Container) GetAlias(abstract any) (any, error) {
	return c.aliases.get(abstract)
}

// IsAlias reports whether name is registered as an alias.
func (c *Container) IsAlias(name any) bool {
	return isIdentifier(name) && c.aliases.isAlias(name)
}
