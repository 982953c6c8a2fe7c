// Package recipe turns binding-set layouts into bound GPU objects.
//
// Every set of a shader program gets a recipe: BindGroupRecipe for direct
// sets, BindTableRecipe for indexed ones. A recipe has one slot per
// binding of its layout and moves through three states:
//
//	Incomplete -> Ready -> Built
//
// It is Ready once every slot holds a resource, and Built after Cook has
// created the GPU object. Cooking an Incomplete recipe fails with a
// *MissingBindingsError naming the empty slots.
//
// A Book builds the recipes of a whole program and fills the slots of
// reserved variables from a reserve.Registry, so callers only supply
// their own resources:
//
//	book, err := recipe.NewBook(ctx, reg, results...)
//	if err != nil {
//		return err
//	}
//	defer book.Destroy(ctx)
//
//	group, _ := book.BindGroup(1)
//	_ = group.Fill(0, gpucore.UniformBuffer(view))
//	if err := book.CookAll(ctx); err != nil {
//		return err
//	}
package recipe
