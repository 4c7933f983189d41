package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goscan/goscan/internal/effect"
	"github.com/goscan/goscan/internal/logging"
	"github.com/goscan/goscan/internal/scanner"
)

var findUnsafeCmd = &cobra.Command{
	Use:   "find-unsafe <module-path>",
	Short: "list every effect requiring caller awareness",
	Long:  `find-unsafe scans a module and prints every unsafe call, raw pointer dereference, mutable static reference, external static reference, and union-style field access it found.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFindUnsafe,
}

func runFindUnsafe(cmd *cobra.Command, args []string) error {
	log := logging.New(verbose)
	defer func() { _ = log.Sync() }()

	results, _, loadErrs, err := scanner.ScanModule(args[0], nil)
	if err != nil {
		return err
	}
	for _, e := range loadErrs {
		log.Warnf("package load: %s", e)
	}

	printSection("Unsafe calls", results.Effects, func(inst effect.EffectInstance) bool {
		return inst.Kind.Kind == effect.KindCall && inst.Kind.IsUnsafe
	})
	printSection("Raw pointer dereferences", results.Effects, func(inst effect.EffectInstance) bool {
		return inst.Kind.Kind == effect.KindRawPointer
	})
	printSection("Mutable static references", results.Effects, func(inst effect.EffectInstance) bool {
		return inst.Kind.Kind == effect.KindStaticMut
	})
	printSection("External static references", results.Effects, func(inst effect.EffectInstance) bool {
		return inst.Kind.Kind == effect.KindStaticExt
	})
	printSection("Union-style field accesses", results.Effects, func(inst effect.EffectInstance) bool {
		return inst.Kind.Kind == effect.KindUnionField
	})

	if len(results.UnsafeTraits) > 0 {
		fmt.Println("=== Unsafe trait declarations ===")
		for _, t := range results.UnsafeTraits {
			fmt.Printf("%s: %s\n", t.Loc.String(), t.TraitName.String())
		}
	}
	if len(results.UnsafeImpls) > 0 {
		fmt.Println("=== Unsafe trait impls ===")
		for _, impl := range results.UnsafeImpls {
			fmt.Printf("%s: %s for %s\n", impl.Loc.String(), impl.TraitName.String(), impl.ImplType.String())
		}
	}

	ffiCount := 0
	fmt.Println("=== FFI calls ===")
	for _, inst := range results.Effects {
		if inst.Kind.Kind != effect.KindCall || inst.Kind.FFI == nil {
			continue
		}
		ffiCount++
		fmt.Printf("%s: %s calls %s (ffi: %s)\n", inst.Loc.String(), inst.Caller.String(), inst.Callee.String(), inst.Kind.FFI.String())
	}
	if ffiCount == 0 {
		fmt.Println("  (none)")
	}

	return nil
}

func printSection(title string, instances []effect.EffectInstance, match func(effect.EffectInstance) bool) {
	fmt.Printf("=== %s ===\n", title)
	found := false
	for _, inst := range instances {
		if !match(inst) {
			continue
		}
		found = true
		fmt.Printf("%s: %s -> %s\n", inst.Loc.String(), inst.Caller.String(), inst.Callee.String())
	}
	if !found {
		fmt.Println("  (none)")
	}
}
