package db

import "github.com/gamevault/storefront-backend/internal/app/model"

// SampleProducts is the demo catalog loaded into empty databases.
func SampleProducts() []model.Product {
	return []model.Product{
		{
			Title:       "PlayStation 5",
			Description: "Next-generation gaming console featuring lightning-fast loading, ultra-high speed SSD, ray tracing, and 4K gaming support.",
			Price:       499.99,
			Category:    model.CategoryConsole,
			ImageURL:    "https://images.unsplash.com/photo-1606813907291-d86efa9b94db?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
			Stock:       15,
			Brand:       "Sony",
		},
		{
			Title:       "Xbox Series X",
			Description: "The most powerful Xbox ever, featuring 4K gaming at up to 120 FPS, 12 teraflops of processing power, and ray tracing support.",
			Price:       499.99,
			Category:    model.CategoryConsole,
			ImageURL:    "https://images.unsplash.com/photo-1607853202273-797f1c22a38e?ixlib=rb-4.0.3&auto=format&fit=crop&w=1447&q=80",
			Stock:       10,
			Brand:       "Microsoft",
		},
		{
			Title:       "DualSense Wireless Controller",
			Description: "Next-gen gaming controller with haptic feedback, adaptive triggers, and built-in microphone for PS5.",
			Price:       69.99,
			Category:    model.CategoryAccessory,
			ImageURL:    "https://images.unsplash.com/photo-1592840496694-26d035b52b48?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
			Stock:       25,
			Brand:       "Sony",
		},
		{
			Title:       "ASUS ROG Swift 27\" Gaming Monitor",
			Description: "27-inch 4K HDR gaming monitor with 144Hz refresh rate, 1ms response time, and G-SYNC technology for smooth gameplay.",
			Price:       699.99,
			Category:    model.CategoryAccessory,
			ImageURL:    "https://images.unsplash.com/photo-1527219525722-f9767a7f2884?ixlib=rb-4.0.3&auto=format&fit=crop&w=1473&q=80",
			Stock:       8,
			Brand:       "ASUS",
		},
		{
			Title:       "Custom Gaming PC",
			Description: "High-end gaming PC featuring RTX 4080, Intel i9 processor, 32GB RAM, 2TB NVMe SSD, and RGB cooling system.",
			Price:       2499.99,
			Category:    model.CategoryConsole,
			ImageURL:    "https://images.unsplash.com/photo-1587202372616-b43abea06c2b?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
			Stock:       5,
			Brand:       "Custom Built",
		},
		{
			Title:       "SteelSeries Arctis Pro Wireless",
			Description: "Premium wireless gaming headset with high-fidelity audio, dual-wireless technology, and retractable microphone.",
			Price:       329.99,
			Category:    model.CategoryAccessory,
			ImageURL:    "https://images.unsplash.com/photo-1618366712010-f4ae9c647dcb?ixlib=rb-4.0.3&auto=format&fit=crop&w=1476&q=80",
			Stock:       12,
			Brand:       "SteelSeries",
		},
		{
			Title:       "Meta Quest 3",
			Description: "Advanced VR headset with high-resolution display, wireless design, and extensive game library for immersive gaming experience.",
			Price:       499.99,
			Category:    model.CategoryConsole,
			ImageURL:    "https://images.unsplash.com/photo-1622979135225-d2ba269cf1ac?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
			Stock:       7,
			Brand:       "Meta",
		},
		{
			Title:       "Razer Huntsman Elite Keyboard",
			Description: "Premium gaming keyboard with optical switches, RGB lighting, media controls, and ergonomic wrist rest.",
			Price:       199.99,
			Category:    model.CategoryAccessory,
			ImageURL:    "https://images.unsplash.com/photo-1595225476474-87563907198a?ixlib=rb-4.0.3&auto=format&fit=crop&w=1470&q=80",
			Stock:       15,
			Brand:       "Razer",
		},
	}
}
